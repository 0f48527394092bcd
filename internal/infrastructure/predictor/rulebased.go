package predictor

import (
	"context"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// RuleBased is the always-available backend: the same deterministic
// pricing the orchestrator falls back to, exposed as a selectable
// variant for deployments that want no model at all.
type RuleBased struct{}

// NewRuleBased creates the rule-based backend
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (r *RuleBased) Predict(ctx context.Context, fv bid.FeatureVector) (*bid.Prediction, error) {
	return bid.RuleBasedPrediction(fv), nil
}

// DetectFraud returns a neutral negative signal. Rule-based fraud
// coverage lives in the rule evaluator; reporting it again here would
// double-count it in the combined verdict.
func (r *RuleBased) DetectFraud(ctx context.Context, events []*bid.BidEvent) (*fraud.Signal, error) {
	return &fraud.Signal{
		Detected:   false,
		Confidence: fraud.RuleConfidence,
		Method:     fraud.MethodRuleBased,
	}, nil
}

func (r *RuleBased) AnalyzeAudience(ctx context.Context, events []*bid.BidEvent) (*bid.AudienceAnalysis, error) {
	return &bid.AudienceAnalysis{
		Insights: bid.RuleBasedInsights(events),
	}, nil
}
