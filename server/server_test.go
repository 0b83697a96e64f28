package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/intentflow/agent"
	"github.com/hupe1980/intentflow/classify"
	"github.com/hupe1980/intentflow/core"
	"github.com/hupe1980/intentflow/evaluation"
	"github.com/hupe1980/intentflow/memory"
	"github.com/hupe1980/intentflow/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, optFns ...func(o *Options)) *Server {
	t.Helper()
	classifier := classify.NewClassifier(nil)
	orch := orchestrator.New(
		classifier,
		agent.NewBillingSpecialist(nil),
		agent.NewAccountSpecialist(nil),
		agent.NewEscalationHandler(nil),
	)
	return New(orch, optFns...)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string   `json:"status"`
		Agents []string `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.ElementsMatch(t, []string{"billing_specialist", "account_specialist", "escalation_handler"}, body.Agents)
}

func TestChatRoutesBillingQuery(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/chat", map[string]any{
		"user_id":          "user-1",
		"message":          "Why is my bill so high?",
		"customer_context": map[string]any{"account_id": "ACC-42"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp core.AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.IntentBillingInquiry, resp.Intent)
	assert.Equal(t, "billing_specialist", resp.AgentUsed)
	assert.False(t, resp.RequiresEscalation)
	assert.Contains(t, resp.Response, "ACC-42")
}

func TestChatRejectsMissingMessage(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/chat", map[string]any{"user_id": "user-1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestChatSeedsConversationHistory(t *testing.T) {
	store := memory.NewInMemoryStore()
	srv := newTestServer(t, func(o *Options) {
		o.Store = store
	})

	rec := postJSON(t, srv.Handler(), "/chat", map[string]any{
		"user_id": "user-7",
		"message": "hello",
		"conversation_history": []core.Message{
			core.NewMessage(core.RoleUser, "My bill doubled", nil),
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	msgs, err := store.Get(context.Background(), "user-7")
	require.NoError(t, err)
	// the orchestrator in this fixture has no store, so only the seeded turn lands
	require.Len(t, msgs, 1)
	assert.Equal(t, "My bill doubled", msgs[0].Content)
}

func TestEvaluateEndpoint(t *testing.T) {
	classifier := classify.NewClassifier(nil)
	orch := orchestrator.New(
		classifier,
		agent.NewBillingSpecialist(nil),
		agent.NewAccountSpecialist(nil),
		agent.NewEscalationHandler(nil),
	)
	runner := evaluation.NewRunner(classifier, orch)
	srv := New(orch, func(o *Options) {
		o.Runner = runner
	})

	rec := postJSON(t, srv.Handler(), "/evaluate", map[string]any{})

	require.Equal(t, http.StatusOK, rec.Code)
	var report evaluation.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, len(evaluation.DefaultTestCases()), report.IntentClassification.TotalCases)
	assert.Nil(t, report.Judge)
}

func TestEvaluateUnregisteredWithoutRunner(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/evaluate", map[string]any{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
