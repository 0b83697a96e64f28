package agent

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/internal/util"
	"github.com/hupe1980/intentflow/logging"
	"github.com/hupe1980/intentflow/model"
)

// noContextPlaceholder stands in for retrieved snippets when lookup fails or
// returns nothing. Specialists never abort on a retrieval failure.
const noContextPlaceholder = "No additional reference information available."

// Request carries everything a specialist needs for one customer query.
// ConversationContext is the advisory summary from conversation memory; an
// empty string omits that prompt section.
type Request struct {
	Query               string
	Customer            core.CustomerContext
	ConversationContext string
}

// Specialist is a domain responder. HandleQuery is total: any internal
// failure selects the deterministic fallback, so the returned text is always
// non-empty.
type Specialist interface {
	// Name returns the stable agent label exposed to callers (e.g. "billing_specialist").
	Name() string
	HandleQuery(ctx context.Context, req Request) string
}

// SpecialistOptions configure the shared specialist machinery.
type SpecialistOptions struct {
	// Retriever supplies knowledge snippets; nil disables lookup.
	Retriever core.Retriever
	// RetrieveK is the number of snippets requested per query.
	RetrieveK int
	// Timeout bounds each outbound model call.
	Timeout time.Duration
	Logger  logging.Logger
}

func defaultSpecialistOptions() SpecialistOptions {
	return SpecialistOptions{
		RetrieveK: 3,
		Timeout:   30 * time.Second,
		Logger:    logging.NoOpLogger{},
	}
}

// baseSpecialist bundles the shared lookup/invoke/fallback plumbing. Concrete
// specialists embed it and supply their prompt and fallback tree.
type baseSpecialist struct {
	name      string
	model     model.Model // nil means capability unavailable for this lifetime
	retriever core.Retriever
	retrieveK int
	timeout   time.Duration
	logger    logging.Logger
}

func newBaseSpecialist(name string, m model.Model, opts SpecialistOptions) baseSpecialist {
	return baseSpecialist{
		name:      name,
		model:     m,
		retriever: opts.Retriever,
		retrieveK: opts.RetrieveK,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
}

// Name returns the specialist's agent label.
func (b *baseSpecialist) Name() string { return b.name }

// available reports whether the generative capability was usable at
// construction time.
func (b *baseSpecialist) available() bool { return b.model != nil }

// lookupContext fetches knowledge snippets for the query, best effort. Any
// failure or empty result yields the placeholder string.
func (b *baseSpecialist) lookupContext(ctx context.Context, query string) string {
	if b.retriever == nil {
		return noContextPlaceholder
	}
	snippets, err := b.retriever.Retrieve(ctx, query, b.retrieveK)
	if err != nil {
		b.logger.Warn("knowledge lookup failed, continuing without context",
			"specialist", b.name, "error", err)
		return noContextPlaceholder
	}
	if len(snippets) == 0 {
		return noContextPlaceholder
	}
	return strings.Join(snippets, "\n")
}

// generate renders the prompt template and invokes the model with a bounded
// timeout. Callers fall back on any returned error.
func (b *baseSpecialist) generate(ctx context.Context, promptTemplate string, state map[string]any) (string, error) {
	prompt, err := util.RenderTemplate(promptTemplate, state)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	resp, err := b.model.Invoke(callCtx, model.Request{Prompt: prompt})
	if err != nil {
		b.logger.Warn("model call failed, using fallback response",
			"specialist", b.name, "error", err, "duration", time.Since(start))
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		b.logger.Warn("model returned empty response, using fallback", "specialist", b.name)
		return "", model.ErrUnavailable
	}
	return text, nil
}

// conversationSection formats the optional short-term context block appended
// to specialist prompts.
func conversationSection(summary string) string {
	if summary == "" {
		return ""
	}
	return "\nRecent Conversation Context:\n" + summary + "\n"
}
