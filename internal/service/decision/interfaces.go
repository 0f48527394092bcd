package decision

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
)

// Service defines the bid decision interface
type Service interface {
	// Decide prices a bid request and returns a validated recommendation
	Decide(ctx context.Context, bctx bid.BidContext) (*bid.BidDecision, error)
}

// PredictionBackend is the single capability the orchestrator needs from
// a backend. The full capability set lives in infrastructure; narrowing
// here keeps test doubles small.
type PredictionBackend interface {
	// Predict prices a feature vector
	Predict(ctx context.Context, fv bid.FeatureVector) (*bid.Prediction, error)
}

// BidEventRepository defines the interface for historical bid reads
type BidEventRepository interface {
	// GetRecentBids returns up to limit most recent events for a campaign,
	// newest first. No data is an empty slice, not an error.
	GetRecentBids(ctx context.Context, campaignID uuid.UUID, limit int) ([]*bid.BidEvent, error)
	// GetBidHistory returns events for a campaign within a time window
	GetBidHistory(ctx context.Context, campaignID uuid.UUID, start, end time.Time, limit, offset int) ([]*bid.BidEvent, error)
}

// MetricsCollector defines the interface for decision metrics
type MetricsCollector interface {
	// RecordDecision records a completed decision with its strategy label
	RecordDecision(ctx context.Context, decision *bid.BidDecision)
	// RecordFallback records a backend failure recovered by the fallback
	RecordFallback(ctx context.Context, reason string)
	// RecordClamp records a validation clamp (below-floor raise or cap)
	RecordClamp(ctx context.Context, kind string)
	// RecordDecisionDuration records end-to-end decision latency
	RecordDecisionDuration(ctx context.Context, duration time.Duration)
}
