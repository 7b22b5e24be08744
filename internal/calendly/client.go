// Package calendly wraps the Calendly scheduling API for property tours.
package calendly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxAvailabilityWindow = 7 * 24 * time.Hour

// Client calls the Calendly REST API.
type Client struct {
	BaseURL      string
	APIKey       string
	EventTypeURI string
	client       *http.Client
}

// NewClient creates a Calendly client. The event type URI identifies the
// tour slot template that availability and bookings are resolved against.
func NewClient(baseURL, apiKey, eventTypeURI string) *Client {
	return &Client{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		APIKey:       apiKey,
		EventTypeURI: eventTypeURI,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from Calendly.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendly API error: %d - %s", e.StatusCode, e.Body)
}

// TimeSlot is one bookable tour slot.
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	Status    string    `json:"status"`
}

// Booking is a confirmed tour reservation.
type Booking struct {
	ID        string    `json:"booking_id"`
	EventURI  string    `json:"event_uri"`
	StartTime time.Time `json:"start_time"`
	CreatedAt string    `json:"created_at"`
}

// BookingRequest describes the visitor and slot for a tour booking.
type BookingRequest struct {
	StartTime    time.Time
	VisitorName  string
	VisitorEmail string
	VisitorPhone string
	Notes        string
}

// Event is the detail record of a scheduled event.
type Event struct {
	URI       string    `json:"uri"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// AvailableTimes returns the available slots between start and end.
// Calendly caps the query window at seven days, so a longer range is
// clamped rather than rejected.
func (c *Client) AvailableTimes(ctx context.Context, start, end time.Time) ([]TimeSlot, error) {
	if end.Sub(start) > maxAvailabilityWindow {
		end = start.Add(maxAvailabilityWindow)
	}

	params := url.Values{}
	params.Set("event_type", c.EventTypeURI)
	params.Set("start_time", start.UTC().Format(time.RFC3339))
	params.Set("end_time", end.UTC().Format(time.RFC3339))

	var result struct {
		Collection []struct {
			StartTime time.Time `json:"start_time"`
			Status    string    `json:"status"`
		} `json:"collection"`
	}
	if err := c.do(ctx, http.MethodGet, "/event_type_available_times?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}

	slots := make([]TimeSlot, 0, len(result.Collection))
	for _, s := range result.Collection {
		if s.Status != "available" {
			continue
		}
		slots = append(slots, TimeSlot{StartTime: s.StartTime, Status: s.Status})
	}
	return slots, nil
}

// BookTour creates a scheduled event for the visitor at the given slot.
func (c *Client) BookTour(ctx context.Context, req BookingRequest) (*Booking, error) {
	if req.VisitorName == "" || req.VisitorEmail == "" {
		return nil, fmt.Errorf("visitor name and email are required")
	}

	firstName, lastName := splitName(req.VisitorName)
	payload := map[string]any{
		"event_type": c.EventTypeURI,
		"start_time": req.StartTime.UTC().Format(time.RFC3339),
		"email":      req.VisitorEmail,
		"first_name": firstName,
		"last_name":  lastName,
	}
	if req.VisitorPhone != "" {
		payload["phone_number"] = req.VisitorPhone
	}
	if req.Notes != "" {
		payload["notes"] = req.Notes
	}

	var result struct {
		Resource struct {
			URI       string `json:"uri"`
			CreatedAt string `json:"created_at"`
		} `json:"resource"`
	}
	if err := c.do(ctx, http.MethodPost, "/scheduled_events/invitees", payload, &result); err != nil {
		return nil, err
	}

	return &Booking{
		ID:        eventUUID(result.Resource.URI),
		EventURI:  result.Resource.URI,
		StartTime: req.StartTime,
		CreatedAt: result.Resource.CreatedAt,
	}, nil
}

// CancelTour cancels a scheduled event by its UUID.
func (c *Client) CancelTour(ctx context.Context, eventID, reason string) error {
	payload := map[string]any{}
	if reason != "" {
		payload["reason"] = reason
	}
	return c.do(ctx, http.MethodPost, "/scheduled_events/"+eventID+"/cancellation", payload, nil)
}

// GetEvent fetches the details of a scheduled event.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	var result struct {
		Resource Event `json:"resource"`
	}
	if err := c.do(ctx, http.MethodGet, "/scheduled_events/"+eventID, nil, &result); err != nil {
		return nil, err
	}
	return &result.Resource, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call calendly: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode calendly response: %w", err)
	}
	return nil
}

func splitName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

// eventUUID extracts the event UUID from a Calendly resource URI.
func eventUUID(uri string) string {
	if uri == "" {
		return ""
	}
	idx := strings.LastIndex(uri, "/")
	return uri[idx+1:]
}
