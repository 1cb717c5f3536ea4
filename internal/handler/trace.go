package handler

import (
	"net/http"

	"github.com/menezmethod/mwpriority/internal/middleware"
)

// TraceResponse is the body of GET /v1/trace.
type TraceResponse struct {
	Stack []string `json:"stack"`
}

// Trace reports which stack middleware ran for this request, outermost
// first. It lets operators confirm the effective order after edits.
//
//	GET /v1/trace
func Trace() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stack := middleware.TraceFromContext(r.Context())
		if stack == nil {
			stack = []string{}
		}
		writeJSON(w, http.StatusOK, TraceResponse{Stack: stack})
	}
}
