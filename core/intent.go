package core

// Intent is the canonical category describing what the customer wants.
// The set is closed; classifiers emitting anything outside it are routed to
// escalation by the orchestrator.
type Intent string

const (
	// IntentBillingInquiry covers bills, charges, pricing and payments.
	IntentBillingInquiry Intent = "billing_inquiry"
	// IntentAccountManagement covers password resets, plan changes, upgrades
	// and account information.
	IntentAccountManagement Intent = "account_management"
	// IntentTechnicalSupport covers network, coverage, speed and device issues.
	IntentTechnicalSupport Intent = "technical_support"
	// IntentComplaint covers service complaints, billing disputes and
	// general dissatisfaction.
	IntentComplaint Intent = "complaint"
	// IntentGeneralInfo covers questions about plans, features and coverage.
	IntentGeneralInfo Intent = "general_info"
	// IntentEscalation is an explicit request for a human agent or supervisor.
	IntentEscalation Intent = "escalation"
)

// Intents lists all canonical intents in classification prompt order.
func Intents() []Intent {
	return []Intent{
		IntentBillingInquiry,
		IntentAccountManagement,
		IntentTechnicalSupport,
		IntentComplaint,
		IntentGeneralInfo,
		IntentEscalation,
	}
}

// String implements fmt.Stringer.
func (i Intent) String() string { return string(i) }

// Valid reports whether the intent is one of the canonical six.
func (i Intent) Valid() bool {
	switch i {
	case IntentBillingInquiry, IntentAccountManagement, IntentTechnicalSupport,
		IntentComplaint, IntentGeneralInfo, IntentEscalation:
		return true
	}
	return false
}

// ParseIntent maps a raw string onto a canonical Intent. Unknown values are
// returned as-is with ok=false so callers can decide how to treat them; the
// orchestrator treats every unknown intent as requiring escalation.
func ParseIntent(s string) (Intent, bool) {
	in := Intent(s)
	return in, in.Valid()
}
