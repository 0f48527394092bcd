package predictor

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
	"github.com/adlattice/bid-decision-engine/internal/domain/fraud"
)

// Simulated is a deterministic-with-jitter backend for development and
// testing. The generator is injected so tests can seed it; a mutex
// guards it because rand.Rand is not safe for concurrent use.
type Simulated struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated backend around the given generator
func NewSimulated(rng *rand.Rand) *Simulated {
	return &Simulated{rng: rng}
}

func (s *Simulated) Predict(ctx context.Context, fv bid.FeatureVector) (*bid.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1.1x to 1.9x floor price
	price := fv.FloorPrice * (1.1 + s.rng.Float64()*0.8)

	if fv.ConversionProbability > 0.1 {
		price *= 1 + fv.ConversionProbability*0.5
	}
	if fv.EngagementScore > 0.5 {
		price *= 1 + fv.EngagementScore*0.2
	}

	switch fv.DeviceType {
	case "mobile":
		price *= 0.95
	case "desktop":
		price *= 1.05
	}

	if fv.SampleCount > 0 {
		if fv.HistoricalWinRate > 0.6 {
			price *= 1.1
		} else if fv.HistoricalWinRate < 0.2 {
			price *= 0.9
		}
		if conversionRate(fv) > 0.1 {
			price *= 1.15
		}
	}

	confidence := 0.6 + s.rng.Float64()*0.3
	if fv.SampleCount > 50 {
		confidence += 0.1
	}
	if fv.SampleCount > 100 {
		confidence += 0.05
	}

	return &bid.Prediction{
		Price:      price,
		Confidence: confidence,
		Strategy:   s.determineStrategy(fv, price),
		FraudRisk:  s.rng.Float64() < 0.05,
	}, nil
}

func conversionRate(fv bid.FeatureVector) float64 {
	if fv.SampleCount == 0 {
		return 0
	}
	return fv.CampaignConversionsLast7d / float64(fv.SampleCount)
}

func (s *Simulated) determineStrategy(fv bid.FeatureVector, price float64) string {
	if fv.ConversionProbability > 0.2 {
		return bid.StrategyConversionFocused
	}

	if fv.SampleCount > 0 {
		switch {
		case price > fv.HistoricalAvgBid*1.2:
			return bid.StrategyAggressiveTargeting
		case price < fv.HistoricalAvgBid*0.8:
			return bid.StrategyConservativeBidding
		default:
			return bid.StrategyPerformanceOptimized
		}
	}

	strategies := []string{
		bid.StrategyAggressiveTargeting,
		bid.StrategyConservativeBidding,
		bid.StrategyPerformanceOptimized,
		bid.StrategyBrandAwareness,
		bid.StrategyConversionFocused,
	}
	return strategies[s.rng.Intn(len(strategies))]
}

func (s *Simulated) DetectFraud(ctx context.Context, events []*bid.BidEvent) (*fraud.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity := make(map[string]int)
	conversions := make(map[string]int)
	for _, ev := range events {
		activity[ev.UserID]++
		if ev.Converted {
			conversions[ev.UserID]++
		}
	}

	var patterns []string
	detected := false
	severity := 1

	for userID, count := range activity {
		rate := float64(conversions[userID]) / float64(count)

		if count > 100 {
			patterns = append(patterns, fmt.Sprintf("user %s shows excessive activity (%d events)", shortUser(userID), count))
			detected = true
			severity = maxInt(severity, 6)
		}
		if rate > 0.8 && count > 10 {
			patterns = append(patterns, fmt.Sprintf("user %s has suspiciously high conversion rate (%.1f%%)", shortUser(userID), rate*100))
			detected = true
			severity = maxInt(severity, 7)
		}
	}

	if s.rng.Float64() < 0.1 {
		patterns = append(patterns, "potential click farming based on timing patterns")
		detected = true
		severity = maxInt(severity, 5)
	}
	if s.rng.Float64() < 0.05 {
		patterns = append(patterns, "geographic anomaly: unusual traffic concentration")
		detected = true
		severity = maxInt(severity, 4)
	}

	confidence := 0.8
	if len(events) < 20 {
		confidence *= 0.7
	}
	if !detected {
		severity = 0
	}

	return &fraud.Signal{
		Detected:   detected,
		Confidence: confidence,
		Patterns:   patterns,
		Severity:   severity,
		Method:     fraud.MethodModelBased,
	}, nil
}

func (s *Simulated) AnalyzeAudience(ctx context.Context, events []*bid.BidEvent) (*bid.AudienceAnalysis, error) {
	deviceTypes := make(map[string]int)
	geoRegions := make(map[string]int)
	for _, ev := range events {
		deviceTypes[ev.DeviceType]++
		geoRegions[ev.Region+", "+ev.Country]++
	}

	var segments, insights []string

	if deviceTypes["mobile"] > len(events)/2 {
		segments = append(segments, "mobile_heavy_users")
		insights = append(insights, "Campaign shows strong mobile user engagement")
	}
	if deviceTypes["desktop"] > len(events)/3 {
		segments = append(segments, "desktop_professionals")
		insights = append(insights, "Desktop users show higher engagement during business hours")
	}

	if len(geoRegions) > 10 {
		insights = append(insights, "Campaign has broad geographic reach across multiple regions")
	} else {
		insights = append(insights, "Campaign is geographically concentrated - consider expansion")
	}

	return &bid.AudienceAnalysis{
		Segments: segments,
		Insights: insights,
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// shortUser truncates a user identifier for pattern text.
func shortUser(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
