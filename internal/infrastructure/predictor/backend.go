// Package predictor provides the pluggable prediction backends: a
// seeded simulator for development, an always-available rule-based
// variant, a remote HTTP model, an embedded XGBoost model, and a
// chat-completion client. All variants speak the same capability set
// over the feature vector and never see raw request state.
package predictor

import (
	"context"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// Backend is the full capability set a prediction backend implements.
// Services consume narrower slices of it through their own interfaces.
type Backend interface {
	// Predict prices a feature vector
	Predict(ctx context.Context, fv bid.FeatureVector) (*bid.Prediction, error)
	// AnalyzeAudience produces narrative segments and insights for a batch
	AnalyzeAudience(ctx context.Context, events []*bid.BidEvent) (*bid.AudienceAnalysis, error)
	// DetectFraud analyzes a batch of events for fraud signals
	DetectFraud(ctx context.Context, events []*bid.BidEvent) (*fraud.Signal, error)
}
