package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_offer_store.go -package=mocks property-agent/internal/storage OfferStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OfferStore defines the interface for offer persistence.
type OfferStore interface {
	// Create stores a new offer in pending_review and returns it with its
	// generated ID and timestamps.
	Create(ctx context.Context, offer *Offer) (*Offer, error)
	// GetByID returns an offer. Returns ErrNotFound when it does not exist.
	GetByID(ctx context.Context, id string) (*Offer, error)
	// Respond applies an accept/reject/counter response to a pending offer.
	Respond(ctx context.Context, id, response string, counterPrice *float64, notes string) (*Offer, error)
	// List returns offers newest first, optionally filtered by property
	// and/or status.
	List(ctx context.Context, propertyID, status string) ([]*Offer, error)
	// Delete removes an offer. Returns ErrNotFound when it does not exist.
	Delete(ctx context.Context, id string) error
	// Stats aggregates offer counts and prices for one property.
	Stats(ctx context.Context, propertyID string) (*OfferStats, error)
}

// OfferRepo implements OfferStore on SQLite.
type OfferRepo struct {
	db *sql.DB
}

// NewOfferRepo creates a new OfferRepo.
func NewOfferRepo(db *sql.DB) *OfferRepo {
	return &OfferRepo{db: db}
}

// newOfferID generates IDs like OFFER-20260115-3F2A9C1B.
func newOfferID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("OFFER-%s-%s", now.Format("20060102"), suffix)
}

const offerColumns = `offer_id, property_id, buyer_name, buyer_email, buyer_phone,
	offer_price, contingencies, closing_date, additional_terms, status,
	counter_offer_price, response_notes, submitted_at, last_updated, responded_at`

// Create stores a new offer and returns it with generated fields populated.
func (r *OfferRepo) Create(ctx context.Context, offer *Offer) (*Offer, error) {
	now := time.Now().UTC()

	contingencies, err := json.Marshal(offer.Contingencies)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contingencies: %w", err)
	}

	var terms sql.NullString
	if len(offer.AdditionalTerms) > 0 {
		raw, err := json.Marshal(offer.AdditionalTerms)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal additional terms: %w", err)
		}
		terms = sql.NullString{String: string(raw), Valid: true}
	}

	id := newOfferID(now)
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO offers (
			offer_id, property_id, buyer_name, buyer_email, buyer_phone,
			offer_price, contingencies, closing_date, additional_terms,
			status, submitted_at, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, offer.PropertyID, offer.BuyerName, offer.BuyerEmail, offer.BuyerPhone,
		offer.Price, string(contingencies), offer.ClosingDate, terms,
		StatusPendingReview, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert offer: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns an offer by its ID.
func (r *OfferRepo) GetByID(ctx context.Context, id string) (*Offer, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+offerColumns+" FROM offers WHERE offer_id = ?", id)

	offer, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query offer: %w", err)
	}
	return offer, nil
}

// Respond applies an accept, reject or counter response to an offer.
// A counter response requires a counter price.
func (r *OfferRepo) Respond(ctx context.Context, id, response string, counterPrice *float64, notes string) (*Offer, error) {
	var status string
	switch response {
	case ResponseAccept:
		status = StatusAccepted
	case ResponseReject:
		status = StatusRejected
	case ResponseCounter:
		if counterPrice == nil {
			return nil, fmt.Errorf("counter_offer_price is required when response is %q", ResponseCounter)
		}
		status = StatusCountered
	default:
		return nil, fmt.Errorf("invalid response %q: must be one of accept, reject, counter", response)
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE offers
		SET status = ?, counter_offer_price = ?, response_notes = ?, responded_at = ?, last_updated = ?
		WHERE offer_id = ?`,
		status, counterPriceArg(counterPrice), notes, now, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// List returns offers newest first. Empty propertyID or status means no
// filter on that column.
func (r *OfferRepo) List(ctx context.Context, propertyID, status string) ([]*Offer, error) {
	query := "SELECT " + offerColumns + " FROM offers WHERE 1=1"
	var args []any

	if propertyID != "" {
		query += " AND property_id = ?"
		args = append(args, propertyID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY submitted_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var offers []*Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return offers, nil
}

// Delete removes an offer.
func (r *OfferRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM offers WHERE offer_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates offer counts and prices for a property.
func (r *OfferRepo) Stats(ctx context.Context, propertyID string) (*OfferStats, error) {
	var stats OfferStats
	var highest, average sql.NullFloat64

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'pending_review' THEN 1 END),
			COUNT(CASE WHEN status = 'accepted' THEN 1 END),
			COUNT(CASE WHEN status = 'rejected' THEN 1 END),
			COUNT(CASE WHEN status = 'countered' THEN 1 END),
			MAX(offer_price),
			AVG(offer_price)
		FROM offers WHERE property_id = ?`,
		propertyID,
	).Scan(&stats.Total, &stats.Pending, &stats.Accepted, &stats.Rejected, &stats.Countered, &highest, &average)
	if err != nil {
		return nil, fmt.Errorf("failed to query offer stats: %w", err)
	}

	stats.HighestPrice = highest.Float64
	stats.AveragePrice = average.Float64
	return &stats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOffer(s scanner) (*Offer, error) {
	var (
		offer         Offer
		contingencies string
		terms         sql.NullString
		counterPrice  sql.NullFloat64
		notes         sql.NullString
		respondedAt   sql.NullTime
	)

	err := s.Scan(
		&offer.ID, &offer.PropertyID, &offer.BuyerName, &offer.BuyerEmail, &offer.BuyerPhone,
		&offer.Price, &contingencies, &offer.ClosingDate, &terms, &offer.Status,
		&counterPrice, &notes, &offer.SubmittedAt, &offer.LastUpdated, &respondedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(contingencies), &offer.Contingencies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contingencies: %w", err)
	}
	if terms.Valid {
		if err := json.Unmarshal([]byte(terms.String), &offer.AdditionalTerms); err != nil {
			return nil, fmt.Errorf("failed to unmarshal additional terms: %w", err)
		}
	}
	if counterPrice.Valid {
		offer.CounterOfferPrice = &counterPrice.Float64
	}
	if notes.Valid {
		offer.ResponseNotes = notes.String
	}
	if respondedAt.Valid {
		offer.RespondedAt = &respondedAt.Time
	}

	return &offer, nil
}

func counterPriceArg(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
