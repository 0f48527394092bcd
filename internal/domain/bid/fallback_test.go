package bid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleBasedPrediction(t *testing.T) {
	tests := []struct {
		name      string
		fv        FeatureVector
		wantPrice float64
	}{
		{
			name: "floor only, no history",
			fv: FeatureVector{
				FloorPrice:            1.0,
				EngagementScore:       DefaultEngagementScore,
				ConversionProbability: DefaultConversionProbability,
			},
			wantPrice: 1.2,
		},
		{
			name: "high conversion probability lifts the price",
			fv: FeatureVector{
				FloorPrice:            1.0,
				EngagementScore:       0.5,
				ConversionProbability: 0.3,
			},
			wantPrice: 1.2 * 1.3,
		},
		{
			name: "high engagement lifts the price",
			fv: FeatureVector{
				FloorPrice:            1.0,
				EngagementScore:       0.8,
				ConversionProbability: 0.1,
			},
			wantPrice: 1.2 * 1.15,
		},
		{
			name: "history blends toward the average win price",
			fv: FeatureVector{
				FloorPrice:            1.5,
				EngagementScore:       DefaultEngagementScore,
				ConversionProbability: DefaultConversionProbability,
				HistoricalWinRate:     1.0,
				HistoricalAvgWinPrice: 2.0,
				SampleCount:           3,
			},
			wantPrice: (1.5*1.2 + 2.0) / 2,
		},
		{
			name: "default stats without real samples do not blend",
			fv: FeatureVector{
				FloorPrice:            1.0,
				EngagementScore:       DefaultEngagementScore,
				ConversionProbability: DefaultConversionProbability,
				HistoricalWinRate:     DefaultWinRate,
				HistoricalAvgWinPrice: DefaultAvgWinPrice,
				SampleCount:           0,
			},
			wantPrice: 1.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := RuleBasedPrediction(tt.fv)
			assert.InDelta(t, tt.wantPrice, p.Price, 1e-9)
			assert.Equal(t, 0.6, p.Confidence)
			assert.Equal(t, StrategyRuleBasedFallback, p.Strategy)
			assert.False(t, p.FraudRisk)
		})
	}
}

func TestRuleBasedPrediction_BlendStaysBetweenBaseAndWinPrice(t *testing.T) {
	fv := FeatureVector{
		FloorPrice:            1.5,
		EngagementScore:       DefaultEngagementScore,
		ConversionProbability: DefaultConversionProbability,
		HistoricalWinRate:     1.0,
		HistoricalAvgWinPrice: 2.0,
		SampleCount:           3,
	}

	p := RuleBasedPrediction(fv)
	assert.Greater(t, p.Price, 1.8)
	assert.Less(t, p.Price, 2.0)
}
