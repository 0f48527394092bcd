package bid

// Rule-based pricing constants.
const (
	fallbackBaseMultiplier       = 1.2
	fallbackEngagementMultiplier = 1.15
	fallbackEngagementGate       = 0.7
	fallbackConversionGate       = 0.1
	fallbackConfidence           = 0.6
)

// RuleBasedPrediction prices a bid without any model call. Base price is
// floor times 1.2, lifted for strong conversion probability and
// engagement, then blended 50/50 with the historical average win price
// when real history backs it. Deterministic; confidence is fixed below
// what a successful model call reports.
func RuleBasedPrediction(fv FeatureVector) *Prediction {
	price := fv.FloorPrice * fallbackBaseMultiplier

	if fv.ConversionProbability > fallbackConversionGate {
		price *= 1 + fv.ConversionProbability
	}
	if fv.EngagementScore > fallbackEngagementGate {
		price *= fallbackEngagementMultiplier
	}
	if fv.SampleCount > 0 && fv.HistoricalWinRate > 0 {
		price = (price + fv.HistoricalAvgWinPrice) / 2
	}

	return &Prediction{
		Price:      price,
		Confidence: fallbackConfidence,
		Strategy:   StrategyRuleBasedFallback,
	}
}
