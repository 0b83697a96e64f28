package classify

import (
	"testing"

	"github.com/hupe1980/intentflow/core"
	"github.com/stretchr/testify/assert"
)

func TestRuleClassifier_Greetings(t *testing.T) {
	r := NewRuleClassifier()
	for _, q := range []string{"hello", "Hi", "  hey  ", "Good Morning"} {
		res := r.Classify(q)
		assert.Equal(t, core.IntentGeneralInfo, res.Intent, "query %q", q)
		assert.Equal(t, 0.9, res.Confidence, "query %q", q)
	}
}

func TestRuleClassifier_KeywordSets(t *testing.T) {
	tests := []struct {
		query      string
		intent     core.Intent
		confidence float64
	}{
		{"Why is my bill so high this month?", core.IntentBillingInquiry, 0.8},
		{"There is a strange charge on my invoice", core.IntentBillingInquiry, 0.8},
		{"I forgot my password and can't log in", core.IntentAccountManagement, 0.8},
		{"I want to upgrade to a bigger data allowance", core.IntentAccountManagement, 0.8},
		{"My internet connection keeps dropping", core.IntentTechnicalSupport, 0.8},
		{"No 5g signal at home", core.IntentTechnicalSupport, 0.8},
		{"I am very dissatisfied with your service quality", core.IntentComplaint, 0.8},
		{"I want to cancel my service immediately", core.IntentEscalation, 0.9},
		{"Let me talk to a supervisor right now", core.IntentEscalation, 0.9},
		{"What color is your logo?", core.IntentGeneralInfo, 0.6},
	}
	r := NewRuleClassifier()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := r.Classify(tt.query)
			assert.Equal(t, tt.intent, res.Intent)
			assert.Equal(t, tt.confidence, res.Confidence)
			assert.Equal(t, core.OutcomeRules, res.Outcome)
		})
	}
}

// The first matching keyword set wins; billing outranks escalation even when
// both sets match.
func TestRuleClassifier_TieBreakPriority(t *testing.T) {
	r := NewRuleClassifier()
	res := r.Classify("I want to cancel this charge")
	assert.Equal(t, core.IntentBillingInquiry, res.Intent)
	assert.Equal(t, 0.8, res.Confidence)
}

func TestRuleClassifier_Deterministic(t *testing.T) {
	r := NewRuleClassifier()
	first := r.Classify("my payment failed")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Classify("my payment failed"))
	}
	assert.Contains(t, []float64{0.6, 0.8, 0.9}, first.Confidence)
}
