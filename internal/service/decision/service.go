package decision

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/errors"
)

// Validation bounds applied to every decision regardless of backend.
const (
	floorRaiseMultiplier = 1.05
	maxFloorMultiplier   = 5.0
	capConfidencePenalty = 0.8
)

// service implements the Service interface
type service struct {
	repo     BidEventRepository
	backend  PredictionBackend
	metrics  MetricsCollector
	logger   *slog.Logger
	validate *validator.Validate
	tracer   trace.Tracer

	historyLimit   int
	backendTimeout time.Duration
	defaultCountry string
}

// NewService creates a new bid decision service
func NewService(
	repo BidEventRepository,
	backend PredictionBackend,
	metrics MetricsCollector,
	logger *slog.Logger,
	historyLimit int,
	backendTimeout time.Duration,
	defaultCountry string,
) Service {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	if backendTimeout <= 0 {
		backendTimeout = 5 * time.Second
	}

	return &service{
		repo:           repo,
		backend:        backend,
		metrics:        metrics,
		logger:         logger,
		validate:       validator.New(),
		tracer:         otel.Tracer("decision"),
		historyLimit:   historyLimit,
		backendTimeout: backendTimeout,
		defaultCountry: defaultCountry,
	}
}

// Decide prices a bid request. Backend failures never surface: the
// rule-based fallback substitutes transparently. Repository failures do
// surface, since pricing without even attempting feature extraction is
// unsafe.
func (s *service) Decide(ctx context.Context, bctx bid.BidContext) (*bid.BidDecision, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "decision.Decide", trace.WithAttributes(
		attribute.String("campaign_id", bctx.CampaignID.String()),
		attribute.Float64("floor_price", bctx.FloorPrice),
	))
	defer span.End()

	if err := s.validate.Struct(bctx); err != nil {
		return nil, errors.NewValidationError("INVALID_BID_CONTEXT", "invalid bid context").WithCause(err)
	}

	events, err := s.repo.GetRecentBids(ctx, bctx.CampaignID, s.historyLimit)
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewInternalError("failed to fetch bid history").WithCause(err)
	}

	stats := bid.AggregateStats(events)
	fv := bid.ExtractFeatures(bctx, stats, time.Now(), s.defaultCountry)

	prediction := s.predict(ctx, fv)

	decision := bid.NewBidDecision(bctx.CampaignID, prediction)
	s.validateDecision(ctx, decision, bctx.FloorPrice)

	span.SetAttributes(
		attribute.Float64("bid_price", decision.Price),
		attribute.String("strategy", decision.Strategy),
	)

	s.metrics.RecordDecision(ctx, decision)
	s.metrics.RecordDecisionDuration(ctx, time.Since(start))

	return decision, nil
}

func (s *service) predict(ctx context.Context, fv bid.FeatureVector) *bid.Prediction {
	callCtx, cancel := context.WithTimeout(ctx, s.backendTimeout)
	defer cancel()

	callCtx, span := s.tracer.Start(callCtx, "decision.backend.Predict")
	defer span.End()

	prediction, err := s.backend.Predict(callCtx, fv)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "prediction backend failed, using rule-based fallback",
			slog.String("error", err.Error()),
		)
		s.metrics.RecordFallback(ctx, "backend_error")
		return bid.RuleBasedPrediction(fv)
	}
	return prediction
}

// validateDecision enforces the price and confidence bounds. Runs for
// every decision so no backend variant can return an unsafe price.
func (s *service) validateDecision(ctx context.Context, d *bid.BidDecision, floorPrice float64) {
	if d.Price < floorPrice {
		d.Price = floorPrice * floorRaiseMultiplier
		s.metrics.RecordClamp(ctx, "below_floor")
	}
	if maxPrice := floorPrice * maxFloorMultiplier; d.Price > maxPrice {
		d.Price = maxPrice
		d.Confidence *= capConfidencePenalty
		s.metrics.RecordClamp(ctx, "above_cap")
	}
	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}
}
