package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/menezmethod/mwpriority/internal/middleware"
	"github.com/menezmethod/mwpriority/internal/openapi"
)

// serve routes req through a mux so path values are populated.
func serve(pattern string, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

var _ = Describe("Health", func() {
	It("returns 200 and status ok", func() {
		rec := httptest.NewRecorder()
		Health().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp map[string]string
		Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
		Expect(resp["status"]).To(Equal("ok"))
		Expect(resp).To(HaveKey("version"))
	})
})

var _ = Describe("Ready", func() {
	When("every stack middleware is ranked", func() {
		It("returns 200", func() {
			rec := httptest.NewRecorder()
			Ready([]string{"recover"}, newManager("recover")).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"status":"ready"`))
			Expect(rec.Body.String()).NotTo(ContainSubstring("unranked"))
		})
	})

	When("a stack middleware is missing from the list", func() {
		It("stays ready and names it", func() {
			rec := httptest.NewRecorder()
			Ready([]string{"recover", "auth"}, newManager("recover")).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"status":"ready"`))
			Expect(rec.Body.String()).To(ContainSubstring(`"unranked":["auth"]`))
		})
	})
})

var _ = Describe("Priority", func() {
	It("returns the current list", func() {
		rec := httptest.NewRecorder()
		Priority(newManager("first", "third", "second")).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/priority", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp PriorityResponse
		Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Priority).To(Equal([]string{"first", "third", "second"}))
	})

	It("encodes an empty list as an empty array", func() {
		rec := httptest.NewRecorder()
		Priority(newManager()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/priority", nil))
		Expect(rec.Body.String()).To(MatchJSON(`{"priority":[]}`))
	})
})

var _ = Describe("PriorityIndex", func() {
	const pattern = "GET /v1/priority/{name}"

	It("returns the position of a ranked middleware", func() {
		h := PriorityIndex(newManager("recover", "auth", "ratelimit"), discardLogger())
		rec := serve(pattern, h, httptest.NewRequest(http.MethodGet, "/v1/priority/ratelimit", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"name":"ratelimit","index":2}`))
	})

	It("returns a 404 envelope for an unranked middleware", func() {
		h := PriorityIndex(newManager("recover"), discardLogger())
		rec := serve(pattern, h, httptest.NewRequest(http.MethodGet, "/v1/priority/csrf", nil))

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		var resp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
				Param   string `json:"param"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Error.Type).To(Equal("not_found_error"))
		Expect(resp.Error.Code).To(Equal("middleware_not_found"))
		Expect(resp.Error.Param).To(Equal("name"))
		Expect(resp.Error.Message).To(ContainSubstring(`middleware "csrf" was not found`))
	})

	It("returns 500 when the lookup itself fails", func() {
		h := PriorityIndex(brokenReader{}, discardLogger())
		rec := serve(pattern, h, httptest.NewRequest(http.MethodGet, "/v1/priority/auth", nil))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})

var _ = Describe("Trace", func() {
	It("reports an empty stack outside a middleware stack", func() {
		rec := httptest.NewRecorder()
		Trace().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trace", nil))
		Expect(rec.Body.String()).To(MatchJSON(`{"stack":[]}`))
	})

	It("reports the middleware that ran, outermost first", func() {
		noop := func(next http.Handler) http.Handler { return next }
		var s middleware.Stack
		s.Use("first", noop).Use("second", noop).Use("third", noop)

		h := s.Handler(Trace(), []string{"second", "third", "first"})
		rec := httptest.NewRecorder()
		req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/trace", nil)
		h.ServeHTTP(rec, req)

		Expect(rec.Body.String()).To(MatchJSON(`{"stack":["second","third","first"]}`))
	})
})

var _ = Describe("OpenAPI", func() {
	It("serves the embedded document as YAML", func() {
		rec := httptest.NewRecorder()
		OpenAPI().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/x-yaml"))
		Expect(rec.Body.Bytes()).To(Equal(openapi.Spec))
		Expect(rec.Body.String()).To(ContainSubstring("/v1/priority/{name}"))
	})
})
