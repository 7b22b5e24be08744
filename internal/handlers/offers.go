package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"property-agent/internal/contextutil"
	"property-agent/internal/service"
	"property-agent/internal/storage"
)

// OffersHandler handles purchase offer submission and management.
type OffersHandler struct {
	store storage.OfferStore
}

// NewOffersHandler creates a new OffersHandler.
func NewOffersHandler(store storage.OfferStore) *OffersHandler {
	return &OffersHandler{store: store}
}

// CreateOfferRequest represents the HTTP request payload for submitting
// an offer. This mirrors storage.Offer but is defined here for HTTP
// layer separation.
type CreateOfferRequest struct {
	PropertyID      string            `json:"property_id"`
	BuyerName       string            `json:"buyer_name"`
	BuyerEmail      string            `json:"buyer_email"`
	BuyerPhone      string            `json:"buyer_phone,omitempty"`
	OfferPrice      float64           `json:"offer_price"`
	Contingencies   []string          `json:"contingencies,omitempty"`
	ClosingDate     string            `json:"closing_date,omitempty"`
	AdditionalTerms map[string]string `json:"additional_terms,omitempty"`
}

// RespondRequest represents the HTTP request payload for responding to
// an offer.
type RespondRequest struct {
	Response          string   `json:"response"`
	CounterOfferPrice *float64 `json:"counter_offer_price,omitempty"`
	Notes             string   `json:"notes,omitempty"`
}

// OfferResponse represents an offer in HTTP responses.
type OfferResponse struct {
	OfferID           string            `json:"offer_id"`
	PropertyID        string            `json:"property_id"`
	BuyerName         string            `json:"buyer_name"`
	BuyerEmail        string            `json:"buyer_email"`
	BuyerPhone        string            `json:"buyer_phone,omitempty"`
	OfferPrice        float64           `json:"offer_price"`
	Contingencies     []string          `json:"contingencies,omitempty"`
	ClosingDate       string            `json:"closing_date,omitempty"`
	AdditionalTerms   map[string]string `json:"additional_terms,omitempty"`
	Status            string            `json:"status"`
	CounterOfferPrice *float64          `json:"counter_offer_price,omitempty"`
	ResponseNotes     string            `json:"response_notes,omitempty"`
	SubmittedAt       string            `json:"submitted_at"`
	LastUpdated       string            `json:"last_updated"`
	RespondedAt       string            `json:"responded_at,omitempty"`
}

// OfferStatsResponse represents aggregate offer statistics for a property.
type OfferStatsResponse struct {
	PropertyID   string  `json:"property_id"`
	Total        int     `json:"total_offers"`
	Pending      int     `json:"pending_review"`
	Accepted     int     `json:"accepted"`
	Rejected     int     `json:"rejected"`
	Countered    int     `json:"countered"`
	HighestPrice float64 `json:"highest_offer"`
	AveragePrice float64 `json:"average_offer"`
}

func toOfferResponse(o *storage.Offer) OfferResponse {
	resp := OfferResponse{
		OfferID:           o.ID,
		PropertyID:        o.PropertyID,
		BuyerName:         o.BuyerName,
		BuyerEmail:        o.BuyerEmail,
		BuyerPhone:        o.BuyerPhone,
		OfferPrice:        o.Price,
		Contingencies:     o.Contingencies,
		ClosingDate:       o.ClosingDate,
		AdditionalTerms:   o.AdditionalTerms,
		Status:            o.Status,
		CounterOfferPrice: o.CounterOfferPrice,
		ResponseNotes:     o.ResponseNotes,
		SubmittedAt:       o.SubmittedAt.UTC().Format(time.RFC3339),
		LastUpdated:       o.LastUpdated.UTC().Format(time.RFC3339),
	}
	if o.RespondedAt != nil {
		resp.RespondedAt = o.RespondedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Create handles POST /api/offers.
func (h *OffersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.PropertyID) == "" {
		writeError(w, http.StatusBadRequest, "property_id is required")
		return
	}
	if strings.TrimSpace(req.BuyerName) == "" || strings.TrimSpace(req.BuyerEmail) == "" {
		writeError(w, http.StatusBadRequest, "buyer_name and buyer_email are required")
		return
	}
	if req.OfferPrice <= 0 {
		writeError(w, http.StatusBadRequest, "offer_price must be positive")
		return
	}

	created, err := h.store.Create(ctx, &storage.Offer{
		PropertyID:      req.PropertyID,
		BuyerName:       req.BuyerName,
		BuyerEmail:      req.BuyerEmail,
		BuyerPhone:      req.BuyerPhone,
		Price:           req.OfferPrice,
		Contingencies:   req.Contingencies,
		ClosingDate:     req.ClosingDate,
		AdditionalTerms: req.AdditionalTerms,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to create offer", "property_id", req.PropertyID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create offer")
		return
	}

	logger.InfoContext(ctx, "offer created", "offer_id", created.ID, "property_id", created.PropertyID)
	writeJSON(w, http.StatusCreated, toOfferResponse(created))
}

// Get handles GET /api/offers/{offerID}.
func (h *OffersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	offer, err := h.store.GetByID(ctx, chi.URLParam(r, "offerID"))
	if err != nil {
		logger.WarnContext(ctx, "offer lookup failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOfferResponse(offer))
}

// Respond handles POST /api/offers/{offerID}/response.
func (h *OffersHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	offerID := chi.URLParam(r, "offerID")
	updated, err := h.store.Respond(ctx, offerID, req.Response, req.CounterOfferPrice, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeServiceError(w, service.ErrNotFound)
		default:
			logger.WarnContext(ctx, "offer response failed", "offer_id", offerID, "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	logger.InfoContext(ctx, "offer responded", "offer_id", offerID, "status", updated.Status)
	writeJSON(w, http.StatusOK, toOfferResponse(updated))
}

// List handles GET /api/offers with optional property_id and status
// query filters.
func (h *OffersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	status := r.URL.Query().Get("status")
	if status != "" && !storage.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "Unknown status filter")
		return
	}

	offers, err := h.store.List(ctx, r.URL.Query().Get("property_id"), status)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list offers", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list offers")
		return
	}

	resp := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		resp = append(resp, toOfferResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/offers/{offerID}.
func (h *OffersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	offerID := chi.URLParam(r, "offerID")
	if err := h.store.Delete(ctx, offerID); err != nil {
		logger.WarnContext(ctx, "offer deletion failed", "offer_id", offerID, "error", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/properties/{propertyID}/offers/stats.
func (h *OffersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	propertyID := chi.URLParam(r, "propertyID")
	stats, err := h.store.Stats(ctx, propertyID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to compute offer stats", "property_id", propertyID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute offer stats")
		return
	}

	writeJSON(w, http.StatusOK, OfferStatsResponse{
		PropertyID:   propertyID,
		Total:        stats.Total,
		Pending:      stats.Pending,
		Accepted:     stats.Accepted,
		Rejected:     stats.Rejected,
		Countered:    stats.Countered,
		HighestPrice: stats.HighestPrice,
		AveragePrice: stats.AveragePrice,
	})
}
