package fraud

import (
	"fmt"
	"sort"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
)

// Thresholds tunes the rule evaluator.
type Thresholds struct {
	// ActivityThreshold flags a user whose event count exceeds it.
	ActivityThreshold int
	// ConversionRateThreshold flags a user converting above it, once
	// MinConversionSample events back the rate.
	ConversionRateThreshold float64
	MinConversionSample     int
	// MinEvents is the batch size below which no detection is attempted.
	MinEvents int
}

// DefaultThresholds returns the production rule thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActivityThreshold:       50,
		ConversionRateThreshold: 0.5,
		MinConversionSample:     10,
		MinEvents:               10,
	}
}

const (
	// RuleConfidence is reported whenever the evaluator actually ran.
	RuleConfidence = 0.7
	// InsufficientDataConfidence is reported for undersized batches.
	InsufficientDataConfidence = 0.3
)

// Evaluate runs the deterministic rule pass over a batch of events.
// Batches smaller than MinEvents yield a low-confidence negative verdict
// rather than an error. Pattern order is stable across runs.
func Evaluate(events []*bid.BidEvent, th Thresholds, policy SeverityPolicy) Verdict {
	if len(events) < th.MinEvents {
		return Verdict{
			Detected:   false,
			Confidence: InsufficientDataConfidence,
			Patterns:   []string{"insufficient data for fraud analysis"},
			Method:     MethodRuleBased,
		}
	}

	activity := make(map[string]int)
	conversions := make(map[string]int)
	for _, ev := range events {
		activity[ev.UserID]++
		if ev.Converted {
			conversions[ev.UserID]++
		}
	}

	users := make([]string, 0, len(activity))
	for userID := range activity {
		users = append(users, userID)
	}
	sort.Strings(users)

	var patterns []string
	var suspicious int
	for _, userID := range users {
		count := activity[userID]
		rate := float64(conversions[userID]) / float64(count)

		switch {
		case count > th.ActivityThreshold:
			suspicious++
			patterns = append(patterns, fmt.Sprintf("user %s: excessive bid activity (%d events)", userID, count))
		case rate > th.ConversionRateThreshold && count >= th.MinConversionSample:
			suspicious++
			patterns = append(patterns, fmt.Sprintf("user %s: abnormal conversion rate (%.0f%% over %d events)", userID, rate*100, count))
		}
	}

	return Verdict{
		Detected:   suspicious > 0,
		Confidence: RuleConfidence,
		Patterns:   patterns,
		Severity:   policy(suspicious),
		Method:     MethodRuleBased,
	}
}
