package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"property-agent/internal/contextutil"
	"property-agent/internal/retrieval"
)

// DocumentsHandler handles document ingestion and property deletion.
type DocumentsHandler struct {
	engine retrieval.Engine
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(engine retrieval.Engine) *DocumentsHandler {
	return &DocumentsHandler{engine: engine}
}

// Ingest handles POST /api/documents. Re-ingesting a document with the
// same property and name replaces its chunks.
func (h *DocumentsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req retrieval.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.engine.IngestDocument(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "document ingestion failed",
			"property_id", req.PropertyID,
			"document_name", req.DocumentName,
			"error", err)
		writeRetrievalError(w, err)
		return
	}

	logger.InfoContext(ctx, "document ingested",
		"property_id", result.PropertyID,
		"document_name", result.DocumentName,
		"chunks_inserted", result.ChunksInserted)
	writeJSON(w, http.StatusCreated, result)
}

// DeleteProperty handles DELETE /api/properties/{propertyID}/documents.
// Removes every indexed chunk for the property. Deleting a property
// with no documents succeeds and reports zero deletions.
func (h *DocumentsHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	propertyID := chi.URLParam(r, "propertyID")
	result, err := h.engine.DeleteProperty(ctx, propertyID)
	if err != nil {
		logger.ErrorContext(ctx, "property deletion failed", "property_id", propertyID, "error", err)
		writeRetrievalError(w, err)
		return
	}

	logger.InfoContext(ctx, "property documents deleted",
		"property_id", propertyID,
		"deleted", result.Deleted)
	writeJSON(w, http.StatusOK, result)
}
