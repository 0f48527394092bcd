package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// Registry holds all engine metrics. It satisfies the metrics
// collector interfaces of the decision, fraud, and insights services.
type Registry struct {
	meter metric.Meter

	// Decision metrics
	DecisionDuration  metric.Float64Histogram
	DecisionCounter   metric.Int64Counter
	FallbackCounter   metric.Int64Counter
	ClampCounter      metric.Int64Counter
	BidPriceHistogram metric.Float64Histogram
	DecisionsPerSec   metric.Float64ObservableGauge

	// Fraud metrics
	ScanDuration    metric.Float64Histogram
	VerdictCounter  metric.Int64Counter
	SeverityGauge   metric.Int64ObservableGauge
	PatternsCounter metric.Int64Counter

	// Insight metrics
	ReportDuration metric.Float64Histogram
	ReportCounter  metric.Int64Counter

	// State for observable metrics
	mu                sync.RWMutex
	decisionsTotal    int64
	lastDecisionCount int64
	lastDecisionTime  time.Time
	lastSeverity      int64
}

// NewRegistry creates a new metrics registry
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{
		meter:            otel.Meter(meterName),
		lastDecisionTime: time.Now(),
	}

	if err := r.initDecisionMetrics(); err != nil {
		return nil, err
	}
	if err := r.initFraudMetrics(); err != nil {
		return nil, err
	}
	if err := r.initInsightMetrics(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) initDecisionMetrics() error {
	var err error

	r.DecisionDuration, err = r.meter.Float64Histogram(
		"bde.decision.duration",
		metric.WithDescription("End-to-end bid decision latency in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.DecisionCounter, err = r.meter.Int64Counter(
		"bde.decision.total",
		metric.WithDescription("Total number of bid decisions"),
	)
	if err != nil {
		return err
	}

	r.FallbackCounter, err = r.meter.Int64Counter(
		"bde.decision.fallback_total",
		metric.WithDescription("Total backend failures recovered by the rule-based fallback"),
	)
	if err != nil {
		return err
	}

	r.ClampCounter, err = r.meter.Int64Counter(
		"bde.decision.clamp_total",
		metric.WithDescription("Total decisions adjusted by price validation"),
	)
	if err != nil {
		return err
	}

	r.BidPriceHistogram, err = r.meter.Float64Histogram(
		"bde.decision.bid_price",
		metric.WithDescription("Decided bid prices in USD"),
		metric.WithUnit("USD"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 25, 50),
	)
	if err != nil {
		return err
	}

	r.DecisionsPerSec, err = r.meter.Float64ObservableGauge(
		"bde.decision.throughput_per_second",
		metric.WithDescription("Current decision throughput per second"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			now := time.Now()
			elapsed := now.Sub(r.lastDecisionTime).Seconds()
			if elapsed > 0 {
				rate := float64(r.decisionsTotal-r.lastDecisionCount) / elapsed
				o.Observe(rate)
				r.lastDecisionCount = r.decisionsTotal
				r.lastDecisionTime = now
			}
			return nil
		}),
	)

	return err
}

func (r *Registry) initFraudMetrics() error {
	var err error

	r.ScanDuration, err = r.meter.Float64Histogram(
		"bde.fraud.scan_duration",
		metric.WithDescription("Fraud scan latency in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.VerdictCounter, err = r.meter.Int64Counter(
		"bde.fraud.verdict_total",
		metric.WithDescription("Total fraud scan verdicts"),
	)
	if err != nil {
		return err
	}

	r.PatternsCounter, err = r.meter.Int64Counter(
		"bde.fraud.pattern_total",
		metric.WithDescription("Total suspicious patterns flagged"),
	)
	if err != nil {
		return err
	}

	r.SeverityGauge, err = r.meter.Int64ObservableGauge(
		"bde.fraud.last_severity",
		metric.WithDescription("Severity of the most recent fraud verdict"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.lastSeverity)
			return nil
		}),
	)

	return err
}

func (r *Registry) initInsightMetrics() error {
	var err error

	r.ReportDuration, err = r.meter.Float64Histogram(
		"bde.insights.report_duration",
		metric.WithDescription("Insight report generation latency in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.ReportCounter, err = r.meter.Int64Counter(
		"bde.insights.report_total",
		metric.WithDescription("Total insight reports generated"),
	)

	return err
}

// RecordDecision records a completed decision with its strategy label
func (r *Registry) RecordDecision(ctx context.Context, decision *bid.BidDecision) {
	attrs := []attribute.KeyValue{
		attribute.String("strategy", decision.Strategy),
	}
	r.DecisionCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.BidPriceHistogram.Record(ctx, decision.Price, metric.WithAttributes(attrs...))

	r.mu.Lock()
	r.decisionsTotal++
	r.mu.Unlock()
}

// RecordFallback records a backend failure recovered by the fallback
func (r *Registry) RecordFallback(ctx context.Context, reason string) {
	r.FallbackCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordClamp records a validation clamp on a decided price
func (r *Registry) RecordClamp(ctx context.Context, kind string) {
	r.ClampCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordDecisionDuration records end-to-end decision latency
func (r *Registry) RecordDecisionDuration(ctx context.Context, duration time.Duration) {
	r.DecisionDuration.Record(ctx, float64(duration.Microseconds())/1000.0)
}

// RecordVerdict records a completed fraud scan verdict
func (r *Registry) RecordVerdict(ctx context.Context, verdict *fraud.Verdict) {
	attrs := []attribute.KeyValue{
		attribute.Bool("detected", verdict.Detected),
		attribute.String("method", string(verdict.Method)),
	}
	r.VerdictCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	if n := len(verdict.Patterns); n > 0 {
		r.PatternsCounter.Add(ctx, int64(n), metric.WithAttributes(attrs...))
	}

	r.mu.Lock()
	r.lastSeverity = int64(verdict.Severity)
	r.mu.Unlock()
}

// RecordScanDuration records end-to-end fraud scan latency
func (r *Registry) RecordScanDuration(ctx context.Context, duration time.Duration) {
	r.ScanDuration.Record(ctx, float64(duration.Microseconds())/1000.0)
}

// RecordReport records a completed insight report
func (r *Registry) RecordReport(ctx context.Context, campaignID uuid.UUID) {
	r.ReportCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("campaign_id", campaignID.String()),
	))
}

// RecordReportDuration records report generation latency
func (r *Registry) RecordReportDuration(ctx context.Context, duration time.Duration) {
	r.ReportDuration.Record(ctx, float64(duration.Microseconds())/1000.0)
}
