package orchestrator

import "github.com/hupe1980/intentflow/core"

// DefaultConfidenceThreshold is the routing gate: classifications below it
// escalate regardless of intent.
const DefaultConfidenceThreshold = 0.7

// Target identifies a terminal node of the routing state machine.
type Target string

const (
	// TargetBilling routes to the billing specialist.
	TargetBilling Target = "billing"
	// TargetAccount routes to the account specialist.
	TargetAccount Target = "account"
	// TargetEscalation routes to the human-handoff handler.
	TargetEscalation Target = "escalation"
)

// Route is the authoritative routing policy: the confidence gate dominates
// the intent, and only billing_inquiry and account_management have dedicated
// specialists. Every other intent, including technical_support, complaint,
// general_info and anything unrecognized, deliberately escalates; a human
// answers what no specialist owns.
func Route(res core.ClassificationResult, threshold float64) Target {
	if res.Confidence < threshold {
		return TargetEscalation
	}
	switch res.Intent {
	case core.IntentBillingInquiry:
		return TargetBilling
	case core.IntentAccountManagement:
		return TargetAccount
	default:
		return TargetEscalation
	}
}
