package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/intentflow/model"
)

const billingPrompt = `You are a billing specialist for a telecommunications company.
You help customers with billing questions, payment issues, and account charges.

Customer Context:
- Account ID: {{.account_id}}
- Current Plan: {{.current_plan}}
- Last Bill Amount: {{.last_bill}}

Relevant Knowledge Base Information:
{{.context}}
{{.conversation}}
Customer Query: {{.query}}

Provide a helpful, accurate response. If you cannot resolve the issue completely,
suggest next steps or escalation to billing department.

Response:`

// BillingSpecialist answers billing, payment and charge questions.
type BillingSpecialist struct {
	baseSpecialist
}

// NewBillingSpecialist constructs the billing responder. A nil model puts it
// in permanent fallback mode: no calls are ever attempted.
func NewBillingSpecialist(m model.Model, optFns ...func(o *SpecialistOptions)) *BillingSpecialist {
	opts := defaultSpecialistOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &BillingSpecialist{baseSpecialist: newBaseSpecialist("billing_specialist", m, opts)}
}

// HandleQuery implements Specialist.
func (s *BillingSpecialist) HandleQuery(ctx context.Context, req Request) string {
	if !s.available() {
		return s.fallback(req)
	}

	knowledgeCtx := s.lookupContext(ctx, req.Query)
	text, err := s.generate(ctx, billingPrompt, map[string]any{
		"query":        req.Query,
		"context":      knowledgeCtx,
		"conversation": conversationSection(req.ConversationContext),
		"account_id":   req.Customer.AccountID,
		"current_plan": req.Customer.CurrentPlan,
		"last_bill":    req.Customer.LastBill,
	})
	if err != nil {
		return s.fallback(req)
	}
	return text
}

// fallback is a small keyword decision tree producing fixed-template billing
// guidance interpolated with the account id.
func (s *BillingSpecialist) fallback(req Request) string {
	query := strings.ToLower(req.Query)
	switch {
	case strings.Contains(query, "bill") || strings.Contains(query, "charge"):
		return fmt.Sprintf(
			"I can help with questions about your bill. For account %s, you can review recent charges in the billing section of your account portal. If a charge looks incorrect, our billing department can investigate and issue adjustments within 1-2 billing cycles.",
			req.Customer.AccountID)
	case strings.Contains(query, "payment"):
		return fmt.Sprintf(
			"To set up or change a payment method for account %s, open the payments section of your account portal. We support automatic payments, one-time card payments and bank transfers. Payments post within one business day.",
			req.Customer.AccountID)
	default:
		return fmt.Sprintf(
			"I can help with billing questions for account %s, including charges, payments and plan pricing. Could you share a few more details about your billing concern?",
			req.Customer.AccountID)
	}
}
