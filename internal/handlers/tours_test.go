package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"property-agent/internal/calendly"
)

type fakeScheduler struct {
	slots     []calendly.TimeSlot
	booking   *calendly.Booking
	event     *calendly.Event
	err       error
	cancelled []string
	booked    []calendly.BookingRequest
}

func (f *fakeScheduler) AvailableTimes(ctx context.Context, start, end time.Time) ([]calendly.TimeSlot, error) {
	return f.slots, f.err
}

func (f *fakeScheduler) BookTour(ctx context.Context, req calendly.BookingRequest) (*calendly.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.booked = append(f.booked, req)
	return f.booking, nil
}

func (f *fakeScheduler) CancelTour(ctx context.Context, eventID, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.cancelled = append(f.cancelled, eventID)
	return nil
}

func (f *fakeScheduler) GetEvent(ctx context.Context, eventID string) (*calendly.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func TestToursHandler_NotConfigured(t *testing.T) {
	handler := NewToursHandler(nil)

	endpoints := []func(http.ResponseWriter, *http.Request){
		handler.Availability,
		handler.Book,
		handler.Cancel,
		handler.Reschedule,
		handler.Get,
	}
	for _, endpoint := range endpoints {
		w := httptest.NewRecorder()
		endpoint(w, httptest.NewRequest(http.MethodGet, "/api/tours", nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503 when scheduler missing", w.Code)
		}
	}
}

func TestToursHandler_Availability(t *testing.T) {
	scheduler := &fakeScheduler{
		slots: []calendly.TimeSlot{
			{StartTime: time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC), Status: "available"},
		},
	}
	handler := NewToursHandler(scheduler)

	w := httptest.NewRecorder()
	handler.Availability(w, httptest.NewRequest(http.MethodGet,
		"/api/tours/availability?start_date=2026-09-01&end_date=2026-09-03&property_id=prop-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var resp []TimeSlotResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("got %d slots, want 1", len(resp))
	}
	if resp[0].Date != "2026-09-01" || resp[0].Time != "02:00 PM" || resp[0].PropertyID != "prop-1" {
		t.Errorf("unexpected slot: %+v", resp[0])
	}
}

func TestToursHandler_AvailabilityBadDates(t *testing.T) {
	handler := NewToursHandler(&fakeScheduler{})

	w := httptest.NewRecorder()
	handler.Availability(w, httptest.NewRequest(http.MethodGet, "/api/tours/availability?start_date=tomorrow&end_date=2026-09-03", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestToursHandler_Book(t *testing.T) {
	scheduler := &fakeScheduler{
		booking: &calendly.Booking{
			ID:        "evt-123",
			EventURI:  "https://api.calendly.com/scheduled_events/evt-123",
			StartTime: time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC),
		},
	}
	handler := NewToursHandler(scheduler)

	var body bytes.Buffer
	json.NewEncoder(&body).Encode(BookTourRequest{
		PropertyID:   "prop-1",
		ISODatetime:  "2026-09-01T14:00:00Z",
		VisitorName:  "Jordan Lee",
		VisitorEmail: "jordan@example.com",
	})

	w := httptest.NewRecorder()
	handler.Book(w, httptest.NewRequest(http.MethodPost, "/api/tours", &body))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	var resp BookingResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.BookingID != "evt-123" || resp.Status != "confirmed" {
		t.Errorf("unexpected booking: %+v", resp)
	}
}

func TestToursHandler_BookValidation(t *testing.T) {
	handler := NewToursHandler(&fakeScheduler{})

	tests := []struct {
		name string
		req  BookTourRequest
	}{
		{"bad datetime", BookTourRequest{ISODatetime: "next tuesday", VisitorName: "J", VisitorEmail: "j@example.com"}},
		{"missing visitor", BookTourRequest{ISODatetime: "2026-09-01T14:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			json.NewEncoder(&body).Encode(tt.req)
			w := httptest.NewRecorder()
			handler.Book(w, httptest.NewRequest(http.MethodPost, "/api/tours", &body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestToursHandler_Cancel(t *testing.T) {
	scheduler := &fakeScheduler{}
	handler := NewToursHandler(scheduler)

	var body bytes.Buffer
	json.NewEncoder(&body).Encode(CancelTourRequest{Reason: "found another place"})

	w := httptest.NewRecorder()
	r := withURLParam(httptest.NewRequest(http.MethodPost, "/api/tours/evt-123/cancellation", &body), "bookingID", "evt-123")
	handler.Cancel(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if len(scheduler.cancelled) != 1 || scheduler.cancelled[0] != "evt-123" {
		t.Errorf("cancel not propagated: %v", scheduler.cancelled)
	}
}

func TestToursHandler_Reschedule(t *testing.T) {
	scheduler := &fakeScheduler{
		booking: &calendly.Booking{
			ID:        "evt-456",
			EventURI:  "https://api.calendly.com/scheduled_events/evt-456",
			StartTime: time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
		},
	}
	handler := NewToursHandler(scheduler)

	var body bytes.Buffer
	json.NewEncoder(&body).Encode(RescheduleTourRequest{
		PropertyID:     "prop-1",
		NewISODatetime: "2026-09-02T10:00:00Z",
		VisitorName:    "Jordan Lee",
		VisitorEmail:   "jordan@example.com",
	})

	w := httptest.NewRecorder()
	r := withURLParam(httptest.NewRequest(http.MethodPost, "/api/tours/evt-123/reschedule", &body), "bookingID", "evt-123")
	handler.Reschedule(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var resp RescheduleResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "rescheduled" || resp.OldBookingID != "evt-123" || resp.NewBookingID != "evt-456" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.NewDate != "2026-09-02" || resp.NewTime != "10:00 AM" {
		t.Errorf("unexpected slot formatting: %+v", resp)
	}

	if len(scheduler.cancelled) != 1 || scheduler.cancelled[0] != "evt-123" {
		t.Fatalf("old booking not cancelled: %v", scheduler.cancelled)
	}
	if len(scheduler.booked) != 1 {
		t.Fatalf("replacement not booked: %d bookings", len(scheduler.booked))
	}
	notes := scheduler.booked[0].Notes
	if !strings.Contains(notes, "prop-1") || !strings.Contains(notes, "evt-123") {
		t.Errorf("booking notes missing property or original booking: %q", notes)
	}
}

func TestToursHandler_RescheduleValidation(t *testing.T) {
	handler := NewToursHandler(&fakeScheduler{})

	tests := []struct {
		name string
		req  RescheduleTourRequest
	}{
		{"bad datetime", RescheduleTourRequest{NewISODatetime: "next week", VisitorName: "J", VisitorEmail: "j@example.com"}},
		{"missing visitor", RescheduleTourRequest{NewISODatetime: "2026-09-02T10:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			json.NewEncoder(&body).Encode(tt.req)
			w := httptest.NewRecorder()
			r := withURLParam(httptest.NewRequest(http.MethodPost, "/api/tours/evt-123/reschedule", &body), "bookingID", "evt-123")
			handler.Reschedule(w, r)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestToursHandler_RescheduleCancelFails(t *testing.T) {
	handler := NewToursHandler(&fakeScheduler{err: &calendly.APIError{StatusCode: http.StatusNotFound, Body: "not found"}})

	var body bytes.Buffer
	json.NewEncoder(&body).Encode(RescheduleTourRequest{
		NewISODatetime: "2026-09-02T10:00:00Z",
		VisitorName:    "Jordan Lee",
		VisitorEmail:   "jordan@example.com",
	})

	w := httptest.NewRecorder()
	r := withURLParam(httptest.NewRequest(http.MethodPost, "/api/tours/evt-missing/reschedule", &body), "bookingID", "evt-missing")
	handler.Reschedule(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when original booking is unknown", w.Code)
	}
}

func TestToursHandler_SchedulerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"calendly 404", &calendly.APIError{StatusCode: http.StatusNotFound, Body: "not found"}, http.StatusNotFound},
		{"calendly 500", &calendly.APIError{StatusCode: http.StatusInternalServerError, Body: "boom"}, http.StatusBadGateway},
		{"network error", context.DeadlineExceeded, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewToursHandler(&fakeScheduler{err: tt.err})
			w := httptest.NewRecorder()
			r := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tours/evt-123", nil), "bookingID", "evt-123")
			handler.Get(w, r)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
