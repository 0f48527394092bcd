package fraud

import (
	"context"
	"log/slog"
	"time"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	domainfraud "github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// service implements the Service interface
type service struct {
	detector FraudDetector
	metrics  MetricsCollector
	logger   *slog.Logger

	thresholds     domainfraud.Thresholds
	severityPolicy domainfraud.SeverityPolicy
	backendTimeout time.Duration
}

// NewService creates a new fraud scanning service
func NewService(
	detector FraudDetector,
	metrics MetricsCollector,
	logger *slog.Logger,
	thresholds domainfraud.Thresholds,
	backendTimeout time.Duration,
) Service {
	if thresholds.MinEvents <= 0 {
		thresholds = domainfraud.DefaultThresholds()
	}
	if backendTimeout <= 0 {
		backendTimeout = 5 * time.Second
	}

	return &service{
		detector:       detector,
		metrics:        metrics,
		logger:         logger,
		thresholds:     thresholds,
		severityPolicy: domainfraud.SeverityDoubled,
		backendTimeout: backendTimeout,
	}
}

// EvaluateRules runs the deterministic rule pass alone.
func (s *service) EvaluateRules(events []*bid.BidEvent) domainfraud.Verdict {
	return domainfraud.Evaluate(events, s.thresholds, s.severityPolicy)
}

// Scan runs the rule pass and the backend signal concurrently over the
// same batch, then combines them. Advisory: a backend failure degrades
// to the rule verdict alone, it never fails the caller.
func (s *service) Scan(ctx context.Context, events []*bid.BidEvent) *domainfraud.Verdict {
	start := time.Now()

	type backendResult struct {
		signal *domainfraud.Signal
		err    error
	}
	backendCh := make(chan backendResult, 1)

	go func() {
		callCtx, cancel := context.WithTimeout(ctx, s.backendTimeout)
		defer cancel()
		signal, err := s.detector.DetectFraud(callCtx, events)
		backendCh <- backendResult{signal, err}
	}()

	rule := s.EvaluateRules(events)

	verdict := rule
	if res := <-backendCh; res.err != nil {
		s.logger.WarnContext(ctx, "fraud backend failed, using rule verdict alone",
			slog.String("error", res.err.Error()),
		)
	} else {
		verdict = domainfraud.Combine(rule, *res.signal)
	}

	s.metrics.RecordVerdict(ctx, &verdict)
	s.metrics.RecordScanDuration(ctx, time.Since(start))

	return &verdict
}
