package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Offer statuses. An offer starts in StatusPendingReview and moves to exactly
// one of the responded states.
const (
	StatusPendingReview = "pending_review"
	StatusAccepted      = "accepted"
	StatusRejected      = "rejected"
	StatusCountered     = "countered"
)

// Responses accepted by Respond.
const (
	ResponseAccept  = "accept"
	ResponseReject  = "reject"
	ResponseCounter = "counter"
)

// ValidStatus reports whether s is a known offer status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPendingReview, StatusAccepted, StatusRejected, StatusCountered:
		return true
	}
	return false
}

// Offer is a purchase offer on a property.
type Offer struct {
	ID                string
	PropertyID        string
	BuyerName         string
	BuyerEmail        string
	BuyerPhone        string
	Price             float64
	Contingencies     []string // stored as JSON
	ClosingDate       string   // ISO date, YYYY-MM-DD
	AdditionalTerms   map[string]string
	Status            string
	CounterOfferPrice *float64
	ResponseNotes     string
	SubmittedAt       time.Time
	LastUpdated       time.Time
	RespondedAt       *time.Time
}

// OfferStats summarizes the offers on one property.
type OfferStats struct {
	Total        int
	Pending      int
	Accepted     int
	Rejected     int
	Countered    int
	HighestPrice float64
	AveragePrice float64
}
