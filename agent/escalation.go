package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/intentflow/model"
)

// Complexity reasons explaining why a query needs human escalation. The
// chosen reason appears verbatim in the response regardless of which path
// produced it.
const (
	ReasonCancellation   = "Account cancellation requires human verification"
	ReasonComplaint      = "Customer complaint requires personalized attention"
	ReasonLegal          = "Legal matter requires specialized handling"
	ReasonHumanRequested = "Customer explicitly requested human agent"
	ReasonComplexIssue   = "Complex issue requiring human expertise"
)

const escalationPrompt = `You are an escalation handler for customer service. Your role is to:
1. Acknowledge the customer's concern
2. Explain why their issue requires human assistance
3. Provide clear next steps for escalation
4. Set appropriate expectations for response time

Customer Context:
- Account ID: {{.account_id}}
- Issue Complexity: {{.complexity_reason}}
{{.conversation}}
Customer Query: {{.query}}

Provide a professional, empathetic response that explains the escalation process.
Include estimated response times and what information the human agent will have access to.

Response:`

// EscalationHandler produces human-handoff responses for queries no domain
// specialist should answer.
type EscalationHandler struct {
	baseSpecialist
}

// NewEscalationHandler constructs the escalation responder. A nil model puts
// it in permanent fallback mode: no calls are ever attempted.
func NewEscalationHandler(m model.Model, optFns ...func(o *SpecialistOptions)) *EscalationHandler {
	opts := defaultSpecialistOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &EscalationHandler{baseSpecialist: newBaseSpecialist("escalation_handler", m, opts)}
}

// HandleQuery implements Specialist. The computed complexity reason appears
// verbatim in the returned text on both the model and fallback paths.
func (s *EscalationHandler) HandleQuery(ctx context.Context, req Request) string {
	reason := DetermineComplexity(req.Query)

	if !s.available() {
		return s.fallback(req, reason)
	}

	text, err := s.generate(ctx, escalationPrompt, map[string]any{
		"query":             req.Query,
		"conversation":      conversationSection(req.ConversationContext),
		"account_id":        req.Customer.AccountID,
		"complexity_reason": reason,
	})
	if err != nil {
		return s.fallback(req, reason)
	}
	if !strings.Contains(text, reason) {
		text = fmt.Sprintf("%s\n\nEscalation reason: %s", text, reason)
	}
	return text
}

// fallback is the deterministic human-handoff template.
func (s *EscalationHandler) fallback(req Request, reason string) string {
	return fmt.Sprintf(
		"Your request has been escalated to a human agent. Reason: %s. A member of our support team will contact you about account %s within one business day, with full access to your account history and this conversation.",
		reason, req.Customer.AccountID)
}

// DetermineComplexity explains why a query needs human escalation using
// ordered keyword checks; cancellation outranks complaints, which outrank
// legal matters, which outrank explicit human requests.
func DetermineComplexity(query string) string {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "cancel", "disconnect", "terminate"):
		return ReasonCancellation
	case containsAny(q, "complaint", "dissatisfied", "angry"):
		return ReasonComplaint
	case containsAny(q, "legal", "lawsuit", "attorney"):
		return ReasonLegal
	case containsAny(q, "supervisor", "manager", "human"):
		return ReasonHumanRequested
	default:
		return ReasonComplexIssue
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
