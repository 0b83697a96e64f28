package evaluation

import (
	"context"
	"testing"

	"github.com/hupe1980/intentflow/agent"
	"github.com/hupe1980/intentflow/classify"
	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/model"
	"github.com/hupe1980/intentflow/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRulesRunner(optFns ...func(o *RunnerOptions)) *Runner {
	classifier := classify.NewClassifier(nil)
	orch := orchestrator.New(
		classifier,
		agent.NewBillingSpecialist(nil),
		agent.NewAccountSpecialist(nil),
		agent.NewEscalationHandler(nil),
	)
	return NewRunner(classifier, orch, optFns...)
}

// The keyword fallback is deliberately coarser than a model: "What plans do
// you offer" trips the account keywords and a manager demand phrased as a
// complaint trips the complaint rule first. The suite numbers below pin that
// known gap so a change to the rule tables is a visible diff here.
func TestEvaluateIntentAccuracyWithRules(t *testing.T) {
	runner := newRulesRunner()

	acc := runner.EvaluateIntentAccuracy(context.Background())

	assert.Equal(t, len(DefaultTestCases()), acc.TotalCases)
	assert.Equal(t, 3, acc.CorrectPredictions)
	assert.InDelta(t, 0.6, acc.OverallAccuracy, 0.001)

	escalation, ok := acc.PerIntent[core.IntentEscalation]
	require.True(t, ok)
	assert.Equal(t, 2, escalation.Total)
	assert.Equal(t, 1, escalation.Correct)
	assert.InDelta(t, 0.5, escalation.Accuracy, 0.001)

	billing, ok := acc.PerIntent[core.IntentBillingInquiry]
	require.True(t, ok)
	assert.Equal(t, 1.0, billing.Accuracy)
}

func TestEvaluateEndToEndWithRules(t *testing.T) {
	runner := newRulesRunner()

	res := runner.EvaluateEndToEnd(context.Background())

	assert.Equal(t, len(DefaultTestCases()), res.TotalCases)
	assert.InDelta(t, 0.6, res.RoutingAccuracy, 0.001)
	// Low-confidence misreads still land on the escalation handler, so the
	// escalation decision itself stays right even when the intent label is off.
	assert.Equal(t, 1.0, res.EscalationAccuracy)
}

func TestEvaluateIntentAccuracyWithModel(t *testing.T) {
	classifierModel := model.NewMockModel("classifier", "mock")
	classifierModel.SetDefaultResponse(`{"intent": "general_info", "confidence": 0.85}`)
	classifier := classify.NewClassifier(classifierModel)
	orch := orchestrator.New(
		classifier,
		agent.NewBillingSpecialist(nil),
		agent.NewAccountSpecialist(nil),
		agent.NewEscalationHandler(nil),
	)
	runner := NewRunner(classifier, orch, func(o *RunnerOptions) {
		o.Cases = []TestCase{{Query: "What plans do you offer for families?", ExpectedIntent: core.IntentGeneralInfo}}
	})

	acc := runner.EvaluateIntentAccuracy(context.Background())

	assert.Equal(t, 1, acc.CorrectPredictions)
	assert.Equal(t, 1.0, acc.OverallAccuracy)
}

func TestRunIncludesJudgeWhenConfigured(t *testing.T) {
	judgeModel := model.NewMockModel("judge", "mock")
	judgeModel.SetDefaultResponse(`{"relevance": 4, "accuracy": 5, "clarity": 4, "empathy": 3, "completeness": 4, "reasoning": "solid"}`)
	runner := newRulesRunner(func(o *RunnerOptions) {
		o.Judge = NewJudge(judgeModel)
	})

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Judge)

	assert.Equal(t, len(DefaultTestCases()), report.Judge.Evaluated)
	assert.InDelta(t, 4.0, report.Judge.AverageScore, 0.001)
}

func TestRunSkipsJudgeByDefault(t *testing.T) {
	report, err := newRulesRunner().Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report.Judge)
}

func TestJudgeClampsScores(t *testing.T) {
	judgeModel := model.NewMockModel("judge", "mock")
	judgeModel.SetDefaultResponse(`{"relevance": 9, "accuracy": 0, "clarity": 5, "empathy": 1, "completeness": 3, "reasoning": "mixed"}`)
	judge := NewJudge(judgeModel)

	card := judge.EvaluateResponse(context.Background(), "query", "response", core.IntentGeneralInfo)

	assert.Equal(t, 5, card.Relevance)
	assert.Equal(t, 1, card.Accuracy)
	assert.InDelta(t, 3.0, card.OverallScore, 0.001)
	assert.Equal(t, "mixed", card.Reasoning)
}

func TestJudgeFallsBackOnGarbage(t *testing.T) {
	judgeModel := model.NewMockModel("judge", "mock")
	judgeModel.SetDefaultResponse("I cannot evaluate this.")
	judge := NewJudge(judgeModel)

	card := judge.EvaluateResponse(context.Background(), "query", "response", core.IntentGeneralInfo)

	assert.Equal(t, 3, card.Relevance)
	assert.Equal(t, 3.0, card.OverallScore)
	assert.Contains(t, card.Reasoning, "unparseable")
}

func TestJudgeFallsBackWithoutModel(t *testing.T) {
	card := NewJudge(nil).EvaluateResponse(context.Background(), "query", "response", core.IntentGeneralInfo)

	assert.Equal(t, 3.0, card.OverallScore)
	assert.Contains(t, card.Reasoning, "no judge model")
}

func TestLoadTestCasesMissingFile(t *testing.T) {
	cases, err := LoadTestCases("does-not-exist.json")
	require.NoError(t, err)
	assert.Equal(t, DefaultTestCases(), cases)
}
