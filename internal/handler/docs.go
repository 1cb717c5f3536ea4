package handler

import (
	"net/http"

	"github.com/menezmethod/mwpriority/internal/openapi"
)

// OpenAPI serves the OpenAPI specification (YAML).
func OpenAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(openapi.Spec)
	}
}
