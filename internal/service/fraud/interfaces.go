package fraud

import (
	"context"
	"time"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	domainfraud "github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// Service defines the fraud scanning interface
type Service interface {
	// Scan evaluates a batch of bid events through both the rule pass and
	// the backend signal and returns the combined verdict
	Scan(ctx context.Context, events []*bid.BidEvent) *domainfraud.Verdict
	// EvaluateRules runs only the deterministic rule pass
	EvaluateRules(events []*bid.BidEvent) domainfraud.Verdict
}

// FraudDetector is the backend capability consumed by the scanner
type FraudDetector interface {
	// DetectFraud analyzes a batch of events for fraud signals
	DetectFraud(ctx context.Context, events []*bid.BidEvent) (*domainfraud.Signal, error)
}

// MetricsCollector defines the interface for fraud metrics
type MetricsCollector interface {
	// RecordVerdict records a completed scan verdict
	RecordVerdict(ctx context.Context, verdict *domainfraud.Verdict)
	// RecordScanDuration records end-to-end scan latency
	RecordScanDuration(ctx context.Context, duration time.Duration)
}
