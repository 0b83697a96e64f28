package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"github.com/hupe1980/intentflow/agent"
	"github.com/hupe1980/intentflow/classify"
	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/logging"
	"github.com/hupe1980/intentflow/memory"
)

// Options configure an Orchestrator.
type Options struct {
	// ConfidenceThreshold is the routing gate (default 0.7).
	ConfidenceThreshold float64
	// Store records conversation turns and supplies context summaries.
	// Nil disables conversation memory entirely.
	Store  core.ConversationStore
	Logger logging.Logger
}

// Orchestrator is the routing state machine tying the classifier and the
// specialists together: classify, threshold-gate, dispatch, respond. A single
// query runs synchronously end-to-end; independent queries may run
// concurrently since the only shared mutable state lives in the
// ConversationStore, which serializes per-user mutation itself.
type Orchestrator struct {
	classifier *classify.Classifier
	billing    agent.Specialist
	account    agent.Specialist
	escalation agent.Specialist
	store      core.ConversationStore
	threshold  float64
	logger     logging.Logger
}

// New wires an Orchestrator from its collaborators.
func New(classifier *classify.Classifier, billing, account, escalation agent.Specialist, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		classifier: classifier,
		billing:    billing,
		account:    account,
		escalation: escalation,
		store:      opts.Store,
		threshold:  opts.ConfidenceThreshold,
		logger:     opts.Logger,
	}
}

// queryState is the mutable state threaded through the routing states for a
// single query.
type queryState struct {
	userID   string
	query    string
	customer core.CustomerContext
	summary  string

	classification core.ClassificationResult
	target         Target
	response       string
	agentUsed      string
	escalated      bool
}

// stateFn executes one routing state and returns the next; nil terminates.
type stateFn func(ctx context.Context, st *queryState) stateFn

// ProcessQuery runs a query through the state machine: classify, gate,
// dispatch to a specialist, respond. It never returns an error from the
// components' own failure modes, which all have documented fallbacks; only
// from a cancelled context.
func (o *Orchestrator) ProcessQuery(ctx context.Context, userID, query string, customerContext map[string]any) (*core.AgentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := &queryState{
		userID:   userID,
		query:    query,
		customer: core.ResolveCustomerContext(customerContext),
	}
	for state := o.stateStart; state != nil; {
		state = state(ctx, st)
	}

	return &core.AgentResponse{
		ID:                 uuid.NewString(),
		Response:           st.response,
		Intent:             st.classification.Intent,
		Confidence:         st.classification.Confidence,
		RequiresEscalation: st.escalated,
		AgentUsed:          st.agentUsed,
	}, nil
}

// stateStart captures prior conversation context before the new turn is
// recorded, so the summary describes what led up to this query.
func (o *Orchestrator) stateStart(ctx context.Context, st *queryState) stateFn {
	if o.store != nil && st.userID != "" {
		st.summary = memory.ContextSummary(ctx, o.store, st.userID)
	}
	return o.stateClassify
}

// stateClassify obtains (intent, confidence) and records the user turn with
// its classification metadata.
func (o *Orchestrator) stateClassify(ctx context.Context, st *queryState) stateFn {
	st.classification = o.classifier.Classify(ctx, st.query)
	st.target = Route(st.classification, o.threshold)

	o.logRouting(st)
	o.record(ctx, st.userID, core.NewMessage(core.RoleUser, st.query, map[string]any{
		"intent":     st.classification.Intent.String(),
		"confidence": st.classification.Confidence,
	}))
	return o.stateDispatch
}

// stateDispatch invokes the specialist selected by the routing policy.
// requires_escalation is true exactly when the terminal node is the
// escalation handler.
func (o *Orchestrator) stateDispatch(ctx context.Context, st *queryState) stateFn {
	req := agent.Request{
		Query:               st.query,
		Customer:            st.customer,
		ConversationContext: st.summary,
	}

	var specialist agent.Specialist
	switch st.target {
	case TargetBilling:
		specialist = o.billing
	case TargetAccount:
		specialist = o.account
	default:
		specialist = o.escalation
		st.escalated = true
	}

	st.response = specialist.HandleQuery(ctx, req)
	st.agentUsed = specialist.Name()
	return o.stateDone
}

// stateDone records the assistant turn and terminates the machine.
func (o *Orchestrator) stateDone(ctx context.Context, st *queryState) stateFn {
	o.record(ctx, st.userID, core.NewMessage(core.RoleAssistant, st.response, map[string]any{
		"intent":    st.classification.Intent.String(),
		"escalated": st.escalated,
	}))
	return nil
}

// record appends a turn to conversation memory, best effort. Memory is
// advisory context, never a reason to fail the query.
func (o *Orchestrator) record(ctx context.Context, userID string, msg core.Message) {
	if o.store == nil || userID == "" {
		return
	}
	if err := o.store.Append(ctx, userID, msg); err != nil {
		o.logger.Warn("failed to record conversation turn", "user_id", userID, "error", err)
	}
}

func (o *Orchestrator) logRouting(st *queryState) {
	if ifl, ok := o.logger.(*logging.IntentFlowLogger); ok {
		ifl.LogRoutingDecision(st.classification.Intent.String(), st.classification.Confidence,
			string(st.target), st.target == TargetEscalation)
		return
	}
	o.logger.Info("Routing decision",
		"intent", st.classification.Intent.String(),
		"confidence", st.classification.Confidence,
		"target", string(st.target),
		"outcome", st.classification.Outcome.String())
}

// Specialists returns the configured responders keyed by routing target,
// letting boundaries enumerate the authoritative mapping instead of
// re-encoding it.
func (o *Orchestrator) Specialists() map[Target]agent.Specialist {
	return map[Target]agent.Specialist{
		TargetBilling:    o.billing,
		TargetAccount:    o.account,
		TargetEscalation: o.escalation,
	}
}
