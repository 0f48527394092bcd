package insights

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
)

// Service defines the campaign insight interface
type Service interface {
	// Analyze produces a performance report over a trailing window of days
	Analyze(ctx context.Context, campaignID uuid.UUID, windowDays int) (*CampaignInsight, error)
}

// AudienceAnalyzer is the backend capability consumed by the reporter
type AudienceAnalyzer interface {
	// AnalyzeAudience produces narrative segments and insights for a batch
	AnalyzeAudience(ctx context.Context, events []*bid.BidEvent) (*bid.AudienceAnalysis, error)
}

// BidHistoryReader defines the interface for windowed history reads
type BidHistoryReader interface {
	// GetBidHistory returns events for a campaign within a time window
	GetBidHistory(ctx context.Context, campaignID uuid.UUID, start, end time.Time, limit, offset int) ([]*bid.BidEvent, error)
}

// MetricsCollector defines the interface for reporting metrics
type MetricsCollector interface {
	// RecordReport records a completed insight report
	RecordReport(ctx context.Context, campaignID uuid.UUID)
	// RecordReportDuration records report generation latency
	RecordReportDuration(ctx context.Context, duration time.Duration)
}
