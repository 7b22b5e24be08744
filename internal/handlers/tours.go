package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"property-agent/internal/calendly"
	"property-agent/internal/contextutil"
)

// TourScheduler is the scheduling capability the tours handler needs.
type TourScheduler interface {
	AvailableTimes(ctx context.Context, start, end time.Time) ([]calendly.TimeSlot, error)
	BookTour(ctx context.Context, req calendly.BookingRequest) (*calendly.Booking, error)
	CancelTour(ctx context.Context, eventID, reason string) error
	GetEvent(ctx context.Context, eventID string) (*calendly.Event, error)
}

// ToursHandler handles property tour scheduling. The scheduler is nil
// when Calendly is not configured; every endpoint then returns 503.
type ToursHandler struct {
	scheduler TourScheduler
}

// NewToursHandler creates a new ToursHandler.
func NewToursHandler(scheduler TourScheduler) *ToursHandler {
	return &ToursHandler{scheduler: scheduler}
}

// TimeSlotResponse is one available tour slot.
type TimeSlotResponse struct {
	PropertyID  string `json:"property_id,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ISODatetime string `json:"iso_datetime"`
	Status      string `json:"status"`
}

// BookTourRequest represents the HTTP request payload for booking a tour.
type BookTourRequest struct {
	PropertyID   string `json:"property_id"`
	ISODatetime  string `json:"iso_datetime"`
	VisitorName  string `json:"visitor_name"`
	VisitorEmail string `json:"visitor_email"`
	VisitorPhone string `json:"visitor_phone,omitempty"`
}

// BookingResponse represents a confirmed tour booking.
type BookingResponse struct {
	BookingID        string `json:"booking_id"`
	CalendlyEventURI string `json:"calendly_event_uri"`
	PropertyID       string `json:"property_id"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	VisitorName      string `json:"visitor_name"`
	VisitorEmail     string `json:"visitor_email"`
	Status           string `json:"status"`
}

// CancelTourRequest represents the HTTP request payload for cancelling
// a tour.
type CancelTourRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RescheduleTourRequest represents the HTTP request payload for moving
// an existing tour to a new slot.
type RescheduleTourRequest struct {
	PropertyID     string `json:"property_id"`
	NewISODatetime string `json:"new_iso_datetime"`
	VisitorName    string `json:"visitor_name"`
	VisitorEmail   string `json:"visitor_email"`
	VisitorPhone   string `json:"visitor_phone,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// RescheduleResponse reports the cancelled and replacement bookings.
type RescheduleResponse struct {
	Status           string `json:"status"`
	OldBookingID     string `json:"old_booking_id"`
	NewBookingID     string `json:"new_booking_id"`
	CalendlyEventURI string `json:"new_calendly_event_uri"`
	PropertyID       string `json:"property_id"`
	NewDate          string `json:"new_date"`
	NewTime          string `json:"new_time"`
	VisitorName      string `json:"visitor_name"`
	VisitorEmail     string `json:"visitor_email"`
	Reason           string `json:"reason,omitempty"`
	RescheduledAt    string `json:"rescheduled_at"`
}

func (h *ToursHandler) configured(w http.ResponseWriter) bool {
	if h.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "Tour scheduling is not configured")
		return false
	}
	return true
}

// Availability handles GET /api/tours/availability. The date range is
// given as start_date and end_date query parameters (YYYY-MM-DD); ranges
// longer than seven days are clamped.
func (h *ToursHandler) Availability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !h.configured(w) {
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	propertyID := r.URL.Query().Get("property_id")

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	// End of day so the last day is included.
	end = end.Add(24*time.Hour - time.Second)

	slots, err := h.scheduler.AvailableTimes(ctx, start, end)
	if err != nil {
		h.writeSchedulerError(w, ctx, err, "Failed to fetch availability")
		return
	}

	resp := make([]TimeSlotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, TimeSlotResponse{
			PropertyID:  propertyID,
			Date:        s.StartTime.Format("2006-01-02"),
			Time:        s.StartTime.Format("03:04 PM"),
			ISODatetime: s.StartTime.Format(time.RFC3339),
			Status:      s.Status,
		})
	}

	logger.InfoContext(ctx, "availability fetched", "slots", len(resp))
	writeJSON(w, http.StatusOK, resp)
}

// Book handles POST /api/tours.
func (h *ToursHandler) Book(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !h.configured(w) {
		return
	}

	var req BookTourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.ISODatetime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "iso_datetime must be RFC 3339")
		return
	}
	if req.VisitorName == "" || req.VisitorEmail == "" {
		writeError(w, http.StatusBadRequest, "visitor_name and visitor_email are required")
		return
	}

	booking, err := h.scheduler.BookTour(ctx, calendly.BookingRequest{
		StartTime:    startTime,
		VisitorName:  req.VisitorName,
		VisitorEmail: req.VisitorEmail,
		VisitorPhone: req.VisitorPhone,
		Notes:        fmt.Sprintf("Property tour for property ID: %s", req.PropertyID),
	})
	if err != nil {
		h.writeSchedulerError(w, ctx, err, "Failed to book tour")
		return
	}

	logger.InfoContext(ctx, "tour booked", "booking_id", booking.ID, "property_id", req.PropertyID)
	writeJSON(w, http.StatusCreated, BookingResponse{
		BookingID:        booking.ID,
		CalendlyEventURI: booking.EventURI,
		PropertyID:       req.PropertyID,
		Date:             startTime.Format("2006-01-02"),
		Time:             startTime.Format("03:04 PM"),
		VisitorName:      req.VisitorName,
		VisitorEmail:     req.VisitorEmail,
		Status:           "confirmed",
	})
}

// Cancel handles POST /api/tours/{bookingID}/cancellation.
func (h *ToursHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !h.configured(w) {
		return
	}

	var req CancelTourRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	bookingID := chi.URLParam(r, "bookingID")
	if err := h.scheduler.CancelTour(ctx, bookingID, req.Reason); err != nil {
		h.writeSchedulerError(w, ctx, err, "Failed to cancel tour")
		return
	}

	logger.InfoContext(ctx, "tour cancelled", "booking_id", bookingID)
	writeJSON(w, http.StatusOK, map[string]string{
		"booking_id":   bookingID,
		"status":       "cancelled",
		"cancelled_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// Reschedule handles POST /api/tours/{bookingID}/reschedule. Calendly
// has no reschedule API, so this cancels the old event and books a new
// one; the invitee receives cancellation and new booking emails.
func (h *ToursHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !h.configured(w) {
		return
	}

	var req RescheduleTourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.NewISODatetime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "new_iso_datetime must be RFC 3339")
		return
	}
	if req.VisitorName == "" || req.VisitorEmail == "" {
		writeError(w, http.StatusBadRequest, "visitor_name and visitor_email are required")
		return
	}

	bookingID := chi.URLParam(r, "bookingID")

	cancelReason := req.Reason
	if cancelReason == "" {
		cancelReason = "Rescheduling tour to a new time"
	}
	if err := h.scheduler.CancelTour(ctx, bookingID, cancelReason); err != nil {
		h.writeSchedulerError(w, ctx, err, "Failed to cancel original tour")
		return
	}

	booking, err := h.scheduler.BookTour(ctx, calendly.BookingRequest{
		StartTime:    startTime,
		VisitorName:  req.VisitorName,
		VisitorEmail: req.VisitorEmail,
		VisitorPhone: req.VisitorPhone,
		Notes:        fmt.Sprintf("Rescheduled property tour for property ID: %s. Original booking: %s", req.PropertyID, bookingID),
	})
	if err != nil {
		// The old event is already cancelled at this point; the caller
		// has to book a fresh slot.
		h.writeSchedulerError(w, ctx, err, "Original tour cancelled but rebooking failed")
		return
	}

	logger.InfoContext(ctx, "tour rescheduled",
		"old_booking_id", bookingID,
		"new_booking_id", booking.ID,
		"property_id", req.PropertyID)
	writeJSON(w, http.StatusOK, RescheduleResponse{
		Status:           "rescheduled",
		OldBookingID:     bookingID,
		NewBookingID:     booking.ID,
		CalendlyEventURI: booking.EventURI,
		PropertyID:       req.PropertyID,
		NewDate:          startTime.Format("2006-01-02"),
		NewTime:          startTime.Format("03:04 PM"),
		VisitorName:      req.VisitorName,
		VisitorEmail:     req.VisitorEmail,
		Reason:           req.Reason,
		RescheduledAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Get handles GET /api/tours/{bookingID}.
func (h *ToursHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.configured(w) {
		return
	}

	event, err := h.scheduler.GetEvent(ctx, chi.URLParam(r, "bookingID"))
	if err != nil {
		h.writeSchedulerError(w, ctx, err, "Failed to fetch tour")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *ToursHandler) writeSchedulerError(w http.ResponseWriter, ctx context.Context, err error, msg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "scheduler error", "error", err)

	var apiErr *calendly.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Booking not found")
			return
		}
		writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: calendly returned %d", msg, apiErr.StatusCode))
		return
	}
	writeError(w, http.StatusBadGateway, msg)
}
