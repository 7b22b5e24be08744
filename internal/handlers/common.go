// Package handlers contains the HTTP handlers for the property agent API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"property-agent/internal/retrieval"
	"property-agent/internal/service"
	"property-agent/internal/storage"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeRetrievalError maps retrieval errors to HTTP status codes.
// Bad configuration and bad requests are the caller's fault; the
// embedding backend and the vector index get distinct gateway codes so
// operators can tell which dependency is down.
func writeRetrievalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, retrieval.ErrInvalidRequest),
		errors.Is(err, retrieval.ErrInvalidConfiguration):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, retrieval.ErrEmbeddingUnavailable):
		writeError(w, http.StatusBadGateway, "Embedding service unavailable")
	case errors.Is(err, retrieval.ErrIndexUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Vector index unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeServiceError maps service-layer errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, retrieval.ErrEmbeddingUnavailable), errors.Is(err, service.ErrExternalService):
		writeError(w, http.StatusBadGateway, "External service error")
	case errors.Is(err, retrieval.ErrIndexUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Vector index unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
