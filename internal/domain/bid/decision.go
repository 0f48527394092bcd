package bid

import (
	"time"

	"github.com/google/uuid"
)

// Strategy labels reported on a BidDecision. ML-backed variants report
// StrategyModelOptimized; the deterministic fallback always reports
// StrategyRuleBasedFallback. The simulated backend additionally uses the
// context-derived labels below.
const (
	StrategyModelOptimized    = "ml_optimized"
	StrategyRuleBasedFallback = "rule_based_fallback"

	StrategyAggressiveTargeting  = "aggressive_targeting"
	StrategyConservativeBidding  = "conservative_bidding"
	StrategyPerformanceOptimized = "performance_optimized"
	StrategyBrandAwareness       = "brand_awareness"
	StrategyConversionFocused    = "conversion_focused"
)

// Prediction is the raw output of a prediction backend, before the
// orchestrator has validated or clamped it.
type Prediction struct {
	Price      float64 `json:"price"`
	Confidence float64 `json:"confidence"`
	Strategy   string  `json:"strategy"`
	FraudRisk  bool    `json:"fraud_risk"`
}

// BidDecision is the priced, validated recommendation returned to the
// caller. Immutable after return; DecisionID correlates downstream audit
// records with the call that produced them.
type BidDecision struct {
	DecisionID uuid.UUID `json:"decision_id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	Price      float64   `json:"price"`
	Confidence float64   `json:"confidence"`
	Strategy   string    `json:"strategy"`
	FraudRisk  bool      `json:"fraud_risk"`
	DecidedAt  time.Time `json:"decided_at"`
}

// NewBidDecision stamps a prediction with a fresh decision identifier.
func NewBidDecision(campaignID uuid.UUID, p *Prediction) *BidDecision {
	return &BidDecision{
		DecisionID: uuid.New(),
		CampaignID: campaignID,
		Price:      p.Price,
		Confidence: p.Confidence,
		Strategy:   p.Strategy,
		FraudRisk:  p.FraudRisk,
		DecidedAt:  time.Now().UTC(),
	}
}
