package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/errors"
)

const bidEventColumns = `
	id, campaign_id, user_id, bid_price, win_price, floor_price,
	won, converted, segment_id, segment_category,
	country, region, city, device_type, os, browser, is_mobile,
	keywords, timestamp, created_at`

// BidEventRepository implements bid event persistence on PostgreSQL.
type BidEventRepository struct {
	db *pgxpool.Pool
}

// NewBidEventRepository creates a new PostgreSQL bid event repository
func NewBidEventRepository(db *pgxpool.Pool) *BidEventRepository {
	return &BidEventRepository{db: db}
}

// Store persists a single bid event.
func (r *BidEventRepository) Store(ctx context.Context, ev *bid.BidEvent) error {
	if ev == nil {
		return errors.NewValidationError("INVALID_EVENT", "bid event cannot be nil")
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO bid_events (
			id, campaign_id, user_id, bid_price, win_price, floor_price,
			won, converted, segment_id, segment_category,
			country, region, city, device_type, os, browser, is_mobile,
			keywords, timestamp, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20
		)
	`, ev.ID, ev.CampaignID, ev.UserID, ev.BidPrice, ev.WinPrice, ev.FloorPrice,
		ev.Won, ev.Converted, ev.SegmentID, ev.SegmentCategory,
		ev.Country, ev.Region, ev.City, ev.DeviceType, ev.OS, ev.Browser, ev.IsMobile,
		ev.Keywords, ev.Timestamp, ev.CreatedAt)
	if err != nil {
		if IsDuplicateKeyViolation(err) {
			return errors.NewConflictError("bid event already recorded").WithCause(err)
		}
		return errors.NewInternalError("failed to insert bid event").WithCause(err)
	}
	return nil
}

// GetRecentBids returns the most recent events for a campaign, newest first.
func (r *BidEventRepository) GetRecentBids(ctx context.Context, campaignID uuid.UUID, limit int) ([]*bid.BidEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, `
		SELECT`+bidEventColumns+`
		FROM bid_events
		WHERE campaign_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, errors.NewInternalError("failed to query recent bids").WithCause(err)
	}
	defer rows.Close()

	return scanBidEvents(rows)
}

// ListActiveCampaigns returns the IDs of campaigns with events since
// the cutoff. Feeds the periodic fraud scan and insight loops.
func (r *BidEventRepository) ListActiveCampaigns(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT campaign_id
		FROM bid_events
		WHERE timestamp >= $1
	`, since)
	if err != nil {
		return nil, errors.NewInternalError("failed to list active campaigns").WithCause(err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternalError("failed to scan campaign id").WithCause(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to iterate campaign ids").WithCause(err)
	}
	return ids, nil
}

// GetBidHistory returns events for a campaign within [start, end], newest first.
func (r *BidEventRepository) GetBidHistory(ctx context.Context, campaignID uuid.UUID, start, end time.Time, limit, offset int) ([]*bid.BidEvent, error) {
	if limit <= 0 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT`+bidEventColumns+`
		FROM bid_events
		WHERE campaign_id = $1 AND timestamp BETWEEN $2 AND $3
		ORDER BY timestamp DESC
		LIMIT $4 OFFSET $5
	`, campaignID, start, end, limit, offset)
	if err != nil {
		return nil, errors.NewInternalError("failed to query bid history").WithCause(err)
	}
	defer rows.Close()

	return scanBidEvents(rows)
}

func scanBidEvents(rows pgx.Rows) ([]*bid.BidEvent, error) {
	var events []*bid.BidEvent
	for rows.Next() {
		var ev bid.BidEvent
		err := rows.Scan(
			&ev.ID, &ev.CampaignID, &ev.UserID, &ev.BidPrice, &ev.WinPrice, &ev.FloorPrice,
			&ev.Won, &ev.Converted, &ev.SegmentID, &ev.SegmentCategory,
			&ev.Country, &ev.Region, &ev.City, &ev.DeviceType, &ev.OS, &ev.Browser, &ev.IsMobile,
			&ev.Keywords, &ev.Timestamp, &ev.CreatedAt,
		)
		if err != nil {
			return nil, errors.NewInternalError("failed to scan bid event").WithCause(err)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to iterate bid events").WithCause(err)
	}
	return events, nil
}
