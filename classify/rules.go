package classify

import (
	"strings"

	"github.com/hupe1980/intentflow/core"
)

// Rule confidence levels. Keyword matches are strong signals but weaker than
// an explicit greeting or escalation request; an unmatched query is assumed
// to be a general information request at low confidence so the orchestrator's
// gate sends it to a human.
const (
	greetingConfidence   = 0.9
	keywordConfidence    = 0.8
	escalationConfidence = 0.9
	defaultConfidence    = 0.6
)

// greetings are matched exactly against the lowercased, trimmed query.
var greetings = map[string]struct{}{
	"hello":          {},
	"hi":             {},
	"hey":            {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
}

// keywordRule binds an ordered keyword set to an intent. Order in the rules
// slice is the tie-break priority: the first matching set wins.
type keywordRule struct {
	intent     core.Intent
	confidence float64
	keywords   []string
}

var rules = []keywordRule{
	{
		intent:     core.IntentBillingInquiry,
		confidence: keywordConfidence,
		keywords:   []string{"bill", "charge", "payment", "cost", "price", "fee", "refund", "invoice"},
	},
	{
		intent:     core.IntentAccountManagement,
		confidence: keywordConfidence,
		keywords:   []string{"password", "login", "log in", "account", "plan", "upgrade", "username", "profile"},
	},
	{
		intent:     core.IntentTechnicalSupport,
		confidence: keywordConfidence,
		keywords:   []string{"internet", "network", "slow", "connection", "signal", "coverage", "5g", "outage"},
	},
	{
		intent:     core.IntentComplaint,
		confidence: keywordConfidence,
		keywords:   []string{"complaint", "unhappy", "dissatisfied", "terrible", "awful", "disappointed"},
	},
	{
		intent:     core.IntentEscalation,
		confidence: escalationConfidence,
		keywords:   []string{"cancel", "terminate", "disconnect", "human", "supervisor", "manager", "representative"},
	},
}

// RuleClassifier is the deterministic keyword-to-intent fallback. It is pure
// and total: the same input always yields the same result and no input fails.
type RuleClassifier struct{}

// NewRuleClassifier constructs a RuleClassifier.
func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

// Classify maps a query onto an intent using the ordered keyword rules.
// Greetings win first, then the keyword sets in priority order, then the
// general-info default.
func (r *RuleClassifier) Classify(text string) core.ClassificationResult {
	normalized := strings.ToLower(strings.TrimSpace(text))

	if _, ok := greetings[normalized]; ok {
		return core.NewClassificationResult(core.IntentGeneralInfo, greetingConfidence, core.OutcomeRules)
	}

	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return core.NewClassificationResult(rule.intent, rule.confidence, core.OutcomeRules)
			}
		}
	}

	return core.NewClassificationResult(core.IntentGeneralInfo, defaultConfidence, core.OutcomeRules)
}
