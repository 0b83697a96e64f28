package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	for _, in := range Intents() {
		parsed, ok := ParseIntent(string(in))
		assert.True(t, ok)
		assert.Equal(t, in, parsed)
	}

	parsed, ok := ParseIntent("refund_request")
	assert.False(t, ok)
	assert.Equal(t, Intent("refund_request"), parsed)
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below range", -0.5, 0.0},
		{"lower bound", 0.0, 0.0},
		{"in range", 0.73, 0.73},
		{"upper bound", 1.0, 1.0},
		{"above range", 1.7, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampConfidence(tt.in))
		})
	}
}

func TestNewClassificationResult_Clamps(t *testing.T) {
	res := NewClassificationResult(IntentBillingInquiry, 1.4, OutcomeModel)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, IntentBillingInquiry, res.Intent)
	assert.Equal(t, OutcomeModel, res.Outcome)
}

func TestResolveCustomerContext_Defaults(t *testing.T) {
	ctx := ResolveCustomerContext(nil)
	assert.Equal(t, DefaultAccountID, ctx.AccountID)
	assert.Equal(t, DefaultAccountStatus, ctx.AccountStatus)
	assert.Equal(t, DefaultPlanType, ctx.PlanType)
	assert.Equal(t, DefaultAccountSince, ctx.AccountSince)
	assert.Equal(t, DefaultCurrentPlan, ctx.CurrentPlan)
	assert.Equal(t, DefaultLastBill, ctx.LastBill)
}

func TestResolveCustomerContext_Values(t *testing.T) {
	ctx := ResolveCustomerContext(map[string]any{
		"account_id":   "ACC-1001",
		"current_plan": "Premium Unlimited",
		"last_bill":    85.50,
		"plan_type":    "",
	})
	assert.Equal(t, "ACC-1001", ctx.AccountID)
	assert.Equal(t, "Premium Unlimited", ctx.CurrentPlan)
	assert.Equal(t, "85.5", ctx.LastBill)
	// empty strings fall back to defaults
	assert.Equal(t, DefaultPlanType, ctx.PlanType)
	// untouched keys keep defaults
	assert.Equal(t, DefaultAccountStatus, ctx.AccountStatus)
}
