package core

// ClassificationOutcome records which path produced a classification. The
// fallback choice is a visible branch rather than an incidental catch-all, so
// callers (and tests) can distinguish "model answered", "model answered
// garbage" and "model never answered".
type ClassificationOutcome int

const (
	// OutcomeModel means the generative capability returned a parseable result.
	OutcomeModel ClassificationOutcome = iota
	// OutcomeDegraded means the capability responded but the result was not
	// machine-parseable; the classifier substituted the degraded escalation
	// result instead of the rule fallback.
	OutcomeDegraded
	// OutcomeRules means the rule-based fallback produced the result, either
	// because the capability was unavailable or because the call failed.
	OutcomeRules
)

// String implements fmt.Stringer.
func (o ClassificationOutcome) String() string {
	switch o {
	case OutcomeModel:
		return "model"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeRules:
		return "rules"
	default:
		return "unknown"
	}
}

// ClassificationResult pairs a predicted intent with the classifier's
// self-reported confidence. Confidence is always within [0,1]; construct
// results through NewClassificationResult to guarantee the clamp.
type ClassificationResult struct {
	Intent     Intent                `json:"intent"`
	Confidence float64               `json:"confidence"`
	Outcome    ClassificationOutcome `json:"-"`
}

// NewClassificationResult builds a result with confidence clamped into [0,1].
func NewClassificationResult(intent Intent, confidence float64, outcome ClassificationOutcome) ClassificationResult {
	return ClassificationResult{
		Intent:     intent,
		Confidence: ClampConfidence(confidence),
		Outcome:    outcome,
	}
}

// ClampConfidence forces a confidence value into [0,1]. Upstream model output
// is not trusted to stay in range.
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// AgentResponse is the unit returned to the orchestrator's caller. It is
// produced fresh per query and never persisted.
type AgentResponse struct {
	ID                 string  `json:"id,omitempty"`
	Response           string  `json:"response"`
	Intent             Intent  `json:"intent"`
	Confidence         float64 `json:"confidence"`
	RequiresEscalation bool    `json:"requires_escalation"`
	AgentUsed          string  `json:"agent_used,omitempty"`
}
