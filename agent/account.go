package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/intentflow/model"
)

const accountPrompt = `You are an account management specialist for a telecommunications company.
You help customers with account changes, password resets, plan upgrades, and account information.

Customer Context:
- Account ID: {{.account_id}}
- Account Status: {{.account_status}}
- Plan Type: {{.plan_type}}
- Account Since: {{.account_since}}

Relevant Knowledge Base Information:
{{.context}}
{{.conversation}}
Customer Query: {{.query}}

Provide step-by-step instructions when possible. For security-sensitive operations
like password resets, explain the verification process required.

Response:`

// AccountSpecialist answers account management questions: password resets,
// plan changes, upgrades and account information.
type AccountSpecialist struct {
	baseSpecialist
}

// NewAccountSpecialist constructs the account responder. A nil model puts it
// in permanent fallback mode: no calls are ever attempted.
func NewAccountSpecialist(m model.Model, optFns ...func(o *SpecialistOptions)) *AccountSpecialist {
	opts := defaultSpecialistOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &AccountSpecialist{baseSpecialist: newBaseSpecialist("account_specialist", m, opts)}
}

// HandleQuery implements Specialist.
func (s *AccountSpecialist) HandleQuery(ctx context.Context, req Request) string {
	if !s.available() {
		return s.fallback(req)
	}

	knowledgeCtx := s.lookupContext(ctx, req.Query)
	text, err := s.generate(ctx, accountPrompt, map[string]any{
		"query":          req.Query,
		"context":        knowledgeCtx,
		"conversation":   conversationSection(req.ConversationContext),
		"account_id":     req.Customer.AccountID,
		"account_status": req.Customer.AccountStatus,
		"plan_type":      req.Customer.PlanType,
		"account_since":  req.Customer.AccountSince,
	})
	if err != nil {
		return s.fallback(req)
	}
	return text
}

// fallback is a keyword decision tree producing fixed-template account
// guidance interpolated with the account id.
func (s *AccountSpecialist) fallback(req Request) string {
	query := strings.ToLower(req.Query)
	switch {
	case strings.Contains(query, "password") || strings.Contains(query, "log in") || strings.Contains(query, "login"):
		return fmt.Sprintf(
			"To reset the password for account %s: open the sign-in page, choose \"Forgot password\", and follow the verification steps sent to your registered email or phone. For security we will ask you to confirm your identity before any change takes effect.",
			req.Customer.AccountID)
	case strings.Contains(query, "upgrade") || strings.Contains(query, "plan"):
		return fmt.Sprintf(
			"Plan changes for account %s can be made in the plans section of your account portal. Upgrades take effect immediately; downgrades apply at the start of your next billing cycle.",
			req.Customer.AccountID)
	default:
		return fmt.Sprintf(
			"I can help with changes to account %s, including password resets, plan upgrades and profile updates. What would you like to change?",
			req.Customer.AccountID)
	}
}
