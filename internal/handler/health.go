// Package handler implements the HTTP handlers of the priority service.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/menezmethod/mwpriority/internal/middleware"
	"github.com/menezmethod/mwpriority/internal/version"
)

// Health handles liveness checks. It always returns 200 if the server is running.
// Response includes "version" so you can see which build is running.
//
//	GET /health
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	}
}

// readyResponse is the body of GET /health/ready.
type readyResponse struct {
	Status   string   `json:"status"`
	Version  string   `json:"version"`
	Unranked []string `json:"unranked,omitempty"`
}

// Ready handles readiness checks. The server is ready once the stack is
// built, so it always returns 200. Stack middleware missing from the
// priority list keep their registration slot; they are listed under
// "unranked" and their position gauge is set to -1.
//
//	GET /health/ready
func Ready(stack []string, pr PriorityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var unranked []string
		for _, name := range stack {
			idx, err := pr.Index(name)
			if err != nil {
				idx = -1
				unranked = append(unranked, name)
			}
			middleware.PriorityPosition.WithLabelValues(name).Set(float64(idx))
		}

		_ = json.NewEncoder(w).Encode(readyResponse{
			Status:   "ready",
			Version:  version.Version,
			Unranked: unranked,
		})
	}
}

// VersionInfo handles version info. Returns JSON with version and optional commit.
//
//	GET /version
func VersionInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		out := map[string]string{"version": version.Version}
		if version.Commit != "" {
			out["commit"] = version.Commit
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
