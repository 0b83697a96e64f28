package classify

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/internal/util"
	"github.com/hupe1980/intentflow/logging"
	"github.com/hupe1980/intentflow/model"
	"github.com/tidwall/gjson"
)

// Confidence substituted when the model responded but without a usable
// confidence value, mirroring the degraded-parse policy.
const missingConfidence = 0.5

// degradedResult is returned when the capability responded but the output was
// not machine-parseable. Distinct from the rule fallback: the model did
// answer, so the safest interpretation is "escalate, low confidence".
var degradedResult = core.ClassificationResult{
	Intent:     core.IntentEscalation,
	Confidence: 0.3,
	Outcome:    core.OutcomeDegraded,
}

const classifyPrompt = `You are an expert intent classifier for customer service queries.

Classify this customer query into ONE of these intents:
- billing_inquiry: Questions about bills, charges, pricing, payments
- account_management: Password reset, plan changes, upgrades, account info
- technical_support: Network issues, 5G coverage, speed problems, device issues
- complaint: Complaints about service, billing disputes, dissatisfaction
- general_info: Information about plans, features, coverage areas
- escalation: Explicit request for human agent or supervisor

Customer Query: {{.query}}

Respond with valid JSON only:
{"intent": "intent_name", "confidence": 0.95}

Confidence should be 0.0-1.0 based on how certain you are.`

// ClassifierOptions configure a Classifier.
type ClassifierOptions struct {
	// Timeout bounds each outbound model call. A timeout is treated the same
	// as any other invocation failure: the rule fallback answers.
	Timeout time.Duration
	Logger  logging.Logger
}

// Classifier produces (intent, confidence) pairs for customer queries. It
// wraps a generative capability plus the RuleClassifier as fallback; Classify
// never fails. A nil model puts the classifier in permanent fallback mode.
type Classifier struct {
	model   model.Model
	rules   *RuleClassifier
	timeout time.Duration
	logger  logging.Logger
}

// NewClassifier constructs a Classifier. Pass a nil model to force permanent
// rule-based operation (capability unavailable at construction time).
func NewClassifier(m model.Model, optFns ...func(o *ClassifierOptions)) *Classifier {
	opts := ClassifierOptions{
		Timeout: 30 * time.Second,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{model: m, rules: NewRuleClassifier(), timeout: opts.Timeout, logger: opts.Logger}
}

// Classify returns a classification for the query. The call is total: model
// unavailability or invocation failure yields the rule fallback, a successful
// but unparseable model response yields the degraded escalation result.
func (c *Classifier) Classify(ctx context.Context, text string) core.ClassificationResult {
	if c.model == nil {
		return c.rules.Classify(text)
	}

	prompt, err := util.RenderTemplate(classifyPrompt, map[string]any{"query": text})
	if err != nil {
		c.logger.Warn("classifier prompt render failed, using rules", "error", err)
		return c.rules.Classify(text)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.model.Invoke(callCtx, model.Request{Prompt: prompt})
	if err != nil {
		c.logger.Warn("classifier model call failed, using rules",
			"error", err, "duration", time.Since(start))
		return c.rules.Classify(text)
	}

	result, ok := parseClassification(resp.Text)
	if !ok {
		c.logger.Warn("classifier response unparseable, degrading to escalation",
			"response_len", len(resp.Text))
		return degradedResult
	}
	return result
}

// parseClassification extracts {intent, confidence} from a model completion.
// Models occasionally wrap the JSON in prose or code fences, so the parse is
// lenient: it scans for the outermost object and reads fields with gjson.
func parseClassification(text string) (core.ClassificationResult, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return core.ClassificationResult{}, false
	}
	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return core.ClassificationResult{}, false
	}

	intentField := gjson.Get(raw, "intent")
	if !intentField.Exists() || intentField.String() == "" {
		return core.ClassificationResult{}, false
	}

	confidence := missingConfidence
	if cf := gjson.Get(raw, "confidence"); cf.Exists() {
		confidence = cf.Float()
	}

	// Non-canonical intents are preserved; the orchestrator escalates them.
	intent, _ := core.ParseIntent(intentField.String())
	return core.NewClassificationResult(intent, confidence, core.OutcomeModel), true
}
