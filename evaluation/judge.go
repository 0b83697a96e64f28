package evaluation

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/internal/util"
	"github.com/hupe1980/intentflow/model"
	"github.com/tidwall/gjson"
)

const judgePrompt = `You are an expert evaluator for customer service AI responses.

Evaluate this customer service interaction on a scale of 1-5 for each criterion:

Customer Query: {{.query}}
AI Response: {{.response}}
Intent Classification: {{.intent}}

Rate each criterion (1=Poor, 5=Excellent):

1. RELEVANCE: How well does the response address the customer's specific question?
2. ACCURACY: Is the information provided correct and helpful?
3. CLARITY: Is the response clear and easy to understand?
4. EMPATHY: Does the response show appropriate understanding of customer needs?
5. COMPLETENESS: Does the response fully address the query or provide next steps?

Respond with valid JSON only:
{
  "relevance": 4,
  "accuracy": 5,
  "clarity": 4,
  "empathy": 3,
  "completeness": 4,
  "reasoning": "Brief explanation of the scores"
}`

var judgeCriteria = []string{"relevance", "accuracy", "clarity", "empathy", "completeness"}

// Scorecard holds the judge's 1-5 ratings for one interaction plus the
// derived overall score.
type Scorecard struct {
	Relevance    int     `json:"relevance"`
	Accuracy     int     `json:"accuracy"`
	Clarity      int     `json:"clarity"`
	Empathy      int     `json:"empathy"`
	Completeness int     `json:"completeness"`
	OverallScore float64 `json:"overall_score"`
	Reasoning    string  `json:"reasoning"`
}

// JudgeSummary aggregates scorecards over a suite.
type JudgeSummary struct {
	AverageScore float64     `json:"average_score"`
	Evaluated    int         `json:"evaluated"`
	Scorecards   []Scorecard `json:"scorecards"`
}

// Judge rates responses with a generative model, degrading to a neutral
// midpoint scorecard when the model fails or answers garbage, the same
// discipline the core applies to its own model calls.
type Judge struct {
	model   model.Model
	timeout time.Duration
}

// JudgeOptions configure a Judge.
type JudgeOptions struct {
	Timeout time.Duration
}

// NewJudge constructs a Judge over the given model.
func NewJudge(m model.Model, optFns ...func(o *JudgeOptions)) *Judge {
	opts := JudgeOptions{Timeout: 30 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Judge{model: m, timeout: opts.Timeout}
}

// EvaluateResponse scores one interaction. It is total: any failure yields
// the neutral scorecard with the failure noted in Reasoning.
func (j *Judge) EvaluateResponse(ctx context.Context, query, response string, intent core.Intent) Scorecard {
	if j.model == nil {
		return neutralScorecard("no judge model configured")
	}

	prompt, err := util.RenderTemplate(judgePrompt, map[string]any{
		"query":    query,
		"response": response,
		"intent":   intent.String(),
	})
	if err != nil {
		return neutralScorecard("prompt render failed: " + err.Error())
	}

	callCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	resp, err := j.model.Invoke(callCtx, model.Request{Prompt: prompt})
	if err != nil {
		return neutralScorecard("evaluation failed: " + err.Error())
	}

	card, ok := parseScorecard(resp.Text)
	if !ok {
		return neutralScorecard("evaluation response unparseable")
	}
	return card
}

// parseScorecard extracts and clamps the criterion scores from a completion.
func parseScorecard(text string) (Scorecard, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Scorecard{}, false
	}
	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return Scorecard{}, false
	}

	scores := make(map[string]int, len(judgeCriteria))
	for _, criterion := range judgeCriteria {
		field := gjson.Get(raw, criterion)
		if !field.Exists() {
			return Scorecard{}, false
		}
		scores[criterion] = clampScore(int(field.Int()))
	}

	card := Scorecard{
		Relevance:    scores["relevance"],
		Accuracy:     scores["accuracy"],
		Clarity:      scores["clarity"],
		Empathy:      scores["empathy"],
		Completeness: scores["completeness"],
		Reasoning:    gjson.Get(raw, "reasoning").String(),
	}
	card.OverallScore = overall(card)
	return card, true
}

func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	if s > 5 {
		return 5
	}
	return s
}

func overall(c Scorecard) float64 {
	sum := c.Relevance + c.Accuracy + c.Clarity + c.Empathy + c.Completeness
	return float64(sum) / float64(len(judgeCriteria))
}

func neutralScorecard(reason string) Scorecard {
	return Scorecard{
		Relevance: 3, Accuracy: 3, Clarity: 3, Empathy: 3, Completeness: 3,
		OverallScore: 3.0,
		Reasoning:    reason,
	}
}

func summarizeScores(cards []Scorecard) JudgeSummary {
	summary := JudgeSummary{Evaluated: len(cards), Scorecards: cards}
	if len(cards) == 0 {
		return summary
	}
	var total float64
	for _, c := range cards {
		total += c.OverallScore
	}
	summary.AverageScore = total / float64(len(cards))
	return summary
}
