// Package evaluation measures classifier and routing quality against a
// scenario suite, optionally scoring response quality with a model judge.
// The suite ships with built-in cases and accepts a JSON file of additional
// ones, so regressions in routing policy show up as metric drops rather than
// support incidents.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hupe1980/intentflow/classify"
	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/orchestrator"
)

// TestCase pairs a query with the expected routing behavior.
type TestCase struct {
	Query          string      `json:"query"`
	ExpectedIntent core.Intent `json:"expected_intent"`
	ShouldEscalate bool        `json:"should_escalate"`
}

// DefaultTestCases returns the built-in scenario suite.
func DefaultTestCases() []TestCase {
	return []TestCase{
		{Query: "My bill is higher than usual this month", ExpectedIntent: core.IntentBillingInquiry},
		{Query: "I forgot my password and can't log in", ExpectedIntent: core.IntentAccountManagement},
		{Query: "I want to cancel my service immediately", ExpectedIntent: core.IntentEscalation, ShouldEscalate: true},
		{Query: "What plans do you offer for families?", ExpectedIntent: core.IntentGeneralInfo},
		{Query: "I'm very unhappy with your service and want to speak to a manager", ExpectedIntent: core.IntentEscalation, ShouldEscalate: true},
	}
}

// LoadTestCases reads additional cases from a JSON file, falling back to the
// built-in suite when the file is absent.
func LoadTestCases(path string) ([]TestCase, error) {
	if path == "" {
		return DefaultTestCases(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTestCases(), nil
		}
		return nil, fmt.Errorf("read test cases %s: %w", path, err)
	}
	var cases []TestCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse test cases %s: %w", path, err)
	}
	return cases, nil
}

// IntentAccuracy summarizes classification accuracy over the suite.
type IntentAccuracy struct {
	OverallAccuracy    float64                       `json:"overall_accuracy"`
	TotalCases         int                           `json:"total_cases"`
	CorrectPredictions int                           `json:"correct_predictions"`
	PerIntent          map[core.Intent]IntentSummary `json:"per_intent_accuracy"`
}

// IntentSummary is the per-intent accuracy breakdown.
type IntentSummary struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// EndToEnd summarizes full orchestrator behavior over the suite.
type EndToEnd struct {
	RoutingAccuracy    float64 `json:"routing_accuracy"`
	EscalationAccuracy float64 `json:"escalation_accuracy"`
	TotalCases         int     `json:"total_test_cases"`
}

// Report is the complete evaluation output.
type Report struct {
	IntentClassification IntentAccuracy `json:"intent_classification"`
	EndToEndSystem       EndToEnd       `json:"end_to_end_system"`
	Judge                *JudgeSummary  `json:"response_quality,omitempty"`
}

// Runner executes the evaluation suite against live components.
type Runner struct {
	classifier   *classify.Classifier
	orchestrator *orchestrator.Orchestrator
	judge        *Judge
	cases        []TestCase
}

// RunnerOptions configure a Runner.
type RunnerOptions struct {
	// Judge enables model-backed response quality scoring; nil skips it.
	Judge *Judge
	// Cases overrides the built-in scenario suite.
	Cases []TestCase
}

// NewRunner constructs a Runner over the given classifier and orchestrator.
func NewRunner(classifier *classify.Classifier, orch *orchestrator.Orchestrator, optFns ...func(o *RunnerOptions)) *Runner {
	opts := RunnerOptions{Cases: DefaultTestCases()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{classifier: classifier, orchestrator: orch, judge: opts.Judge, cases: opts.Cases}
}

// EvaluateIntentAccuracy classifies every case and reports accuracy overall
// and per expected intent.
func (r *Runner) EvaluateIntentAccuracy(ctx context.Context) IntentAccuracy {
	acc := IntentAccuracy{
		TotalCases: len(r.cases),
		PerIntent:  make(map[core.Intent]IntentSummary),
	}
	for _, tc := range r.cases {
		result := r.classifier.Classify(ctx, tc.Query)

		summary := acc.PerIntent[tc.ExpectedIntent]
		summary.Total++
		if result.Intent == tc.ExpectedIntent {
			acc.CorrectPredictions++
			summary.Correct++
		}
		acc.PerIntent[tc.ExpectedIntent] = summary
	}
	for intent, summary := range acc.PerIntent {
		summary.Accuracy = float64(summary.Correct) / float64(summary.Total)
		acc.PerIntent[intent] = summary
	}
	if acc.TotalCases > 0 {
		acc.OverallAccuracy = float64(acc.CorrectPredictions) / float64(acc.TotalCases)
	}
	return acc
}

// EvaluateEndToEnd runs every case through the orchestrator and checks both
// the predicted intent and the escalation decision.
func (r *Runner) EvaluateEndToEnd(ctx context.Context) EndToEnd {
	res := EndToEnd{TotalCases: len(r.cases)}
	if res.TotalCases == 0 {
		return res
	}

	successfulRoutes := 0
	appropriateEscalations := 0
	for _, tc := range r.cases {
		resp, err := r.orchestrator.ProcessQuery(ctx, "", tc.Query, map[string]any{"account_id": "TEST123"})
		if err != nil {
			continue
		}
		if resp.Intent == tc.ExpectedIntent {
			successfulRoutes++
		}
		if resp.RequiresEscalation == tc.ShouldEscalate {
			appropriateEscalations++
		}
	}
	res.RoutingAccuracy = float64(successfulRoutes) / float64(res.TotalCases)
	res.EscalationAccuracy = float64(appropriateEscalations) / float64(res.TotalCases)
	return res
}

// Run executes the full suite.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := &Report{
		IntentClassification: r.EvaluateIntentAccuracy(ctx),
		EndToEndSystem:       r.EvaluateEndToEnd(ctx),
	}
	if r.judge != nil {
		summary := r.judgeResponses(ctx)
		report.Judge = &summary
	}
	return report, nil
}

// judgeResponses scores each case's live response with the model judge.
func (r *Runner) judgeResponses(ctx context.Context) JudgeSummary {
	scores := make([]Scorecard, 0, len(r.cases))
	for _, tc := range r.cases {
		resp, err := r.orchestrator.ProcessQuery(ctx, "", tc.Query, map[string]any{"account_id": "TEST123"})
		if err != nil {
			continue
		}
		scores = append(scores, r.judge.EvaluateResponse(ctx, tc.Query, resp.Response, resp.Intent))
	}
	return summarizeScores(scores)
}
