// Package fraud holds the fraud verdict model shared by the rule
// evaluator and the prediction backends, plus the pure signal combiner.
package fraud

// DetectionMethod identifies which path produced a verdict.
type DetectionMethod string

const (
	MethodRuleBased  DetectionMethod = "rule_based"
	MethodModelBased DetectionMethod = "model_based"
	MethodCombined   DetectionMethod = "combined"
)

// SeverityMax bounds every severity score.
const SeverityMax = 10

// SeverityPolicy maps a suspicious-user count to a severity score.
type SeverityPolicy func(suspiciousCount int) int

// SeverityDoubled is the canonical policy: two severity points per
// suspicious user, capped.
func SeverityDoubled(suspiciousCount int) int {
	if s := 2 * suspiciousCount; s < SeverityMax {
		return s
	}
	return SeverityMax
}

// SeverityLinear scores one point per suspicious user, capped. Kept as a
// named alternative for deployments that want the gentler scale.
func SeverityLinear(suspiciousCount int) int {
	if suspiciousCount < SeverityMax {
		return suspiciousCount
	}
	return SeverityMax
}

// Verdict is the outcome of a fraud analysis pass.
type Verdict struct {
	Detected   bool            `json:"detected"`
	Confidence float64         `json:"confidence"`
	Patterns   []string        `json:"patterns"`
	Severity   int             `json:"severity"`
	Method     DetectionMethod `json:"method"`
}

// Signal is a backend-produced verdict before combining. Structurally a
// Verdict; the separate name keeps the two inputs of Combine distinct at
// call sites.
type Signal = Verdict

// Combine merges the rule verdict with a backend signal. Detection ORs,
// confidence averages, severity takes the max, rule patterns come first.
// Total: an insufficient-data input is just a valid negative verdict.
func Combine(rule, backend Verdict) Verdict {
	severity := rule.Severity
	if backend.Severity > severity {
		severity = backend.Severity
	}

	patterns := make([]string, 0, len(rule.Patterns)+len(backend.Patterns))
	patterns = append(patterns, rule.Patterns...)
	patterns = append(patterns, backend.Patterns...)

	return Verdict{
		Detected:   rule.Detected || backend.Detected,
		Confidence: (rule.Confidence + backend.Confidence) / 2,
		Patterns:   patterns,
		Severity:   severity,
		Method:     MethodCombined,
	}
}
