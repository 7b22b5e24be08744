package handlers

import (
	"encoding/json"
	"net/http"

	"property-agent/internal/contextutil"
	"property-agent/internal/service"
)

// AskHandler handles natural-language questions about properties.
type AskHandler struct {
	answers service.AnswerService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(answers service.AnswerService) *AskHandler {
	return &AskHandler{answers: answers}
}

// ServeHTTP handles POST /api/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req service.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.answers.Answer(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "property_id", req.PropertyID, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
