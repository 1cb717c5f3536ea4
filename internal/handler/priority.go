package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/menezmethod/mwpriority/internal/apierror"
	"github.com/menezmethod/mwpriority/priority"
)

// PriorityReader is the read side of a priority.Manager.
type PriorityReader interface {
	Priority() []string
	Index(id string) (int, error)
}

// PriorityResponse is the body of GET /v1/priority.
type PriorityResponse struct {
	Priority []string `json:"priority"`
}

// PositionResponse is the body of GET /v1/priority/{name}.
type PositionResponse struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Priority returns the current priority list.
//
//	GET /v1/priority
func Priority(pr PriorityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, PriorityResponse{Priority: pr.Priority()})
	}
}

// PriorityIndex returns the position of one middleware in the priority list.
//
//	GET /v1/priority/{name}
func PriorityIndex(pr PriorityReader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		idx, err := pr.Index(name)
		if errors.Is(err, priority.ErrNotFound) {
			apierror.Write(w, apierror.NotFound("name", err.Error()))
			return
		}
		if err != nil {
			logger.Error("priority lookup failed", "name", name, "err", err)
			apierror.Write(w, apierror.Internal("priority lookup failed"))
			return
		}

		writeJSON(w, http.StatusOK, PositionResponse{Name: name, Index: idx})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}
