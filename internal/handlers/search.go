package handlers

import (
	"encoding/json"
	"net/http"

	"property-agent/internal/contextutil"
	"property-agent/internal/retrieval"
)

// SearchHandler handles semantic search over property documents.
type SearchHandler struct {
	engine retrieval.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine retrieval.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// ServeHTTP handles POST /api/search. An empty result set is a normal
// response with status "no_results", not an error.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req retrieval.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.engine.Search(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "property_id", req.PropertyID, "error", err)
		writeRetrievalError(w, err)
		return
	}

	logger.InfoContext(ctx, "search completed",
		"property_id", req.PropertyID,
		"results", len(resp.Results),
		"status", resp.Status)
	writeJSON(w, http.StatusOK, resp)
}
