package voice

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hupe1980/intentflow/agent"
	"github.com/hupe1980/intentflow/classify"
	"github.com/hupe1980/intentflow/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestRelay(t *testing.T) *websocket.Conn {
	t.Helper()
	orch := orchestrator.New(
		classify.NewClassifier(nil),
		agent.NewBillingSpecialist(nil),
		agent.NewAccountSpecialist(nil),
		agent.NewEscalationHandler(nil),
	)
	srv := httptest.NewServer(NewRelay(orch))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user_id=voice-user"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) event {
	t.Helper()
	var ev event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestRelayAnnouncesSessionOnConnect(t *testing.T) {
	conn := dialTestRelay(t)

	ev := readEvent(t, conn)
	assert.Equal(t, "session.update", ev.Type)
	assert.Equal(t, "alloy", ev.Session["voice"])
	assert.Equal(t, "pcm16", ev.Session["input_audio_format"])
}

func TestRelayAnswersTranscription(t *testing.T) {
	conn := dialTestRelay(t)
	readEvent(t, conn) // session.update

	require.NoError(t, conn.WriteJSON(event{
		Type:       "conversation.item.input_audio_transcription.completed",
		Transcript: "Why is my bill so high?",
	}))

	answer := readEvent(t, conn)
	require.Equal(t, "conversation.item.create", answer.Type)
	require.NotNil(t, answer.Item)
	assert.Equal(t, "assistant", answer.Item.Role)
	require.Len(t, answer.Item.Content, 1)
	assert.NotEmpty(t, answer.Item.Content[0].Text)

	trigger := readEvent(t, conn)
	assert.Equal(t, "response.create", trigger.Type)
}

func TestRelayReportsMalformedEvents(t *testing.T) {
	conn := dialTestRelay(t)
	readEvent(t, conn) // session.update

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	ev := readEvent(t, conn)
	assert.Equal(t, "error", ev.Type)
	assert.Equal(t, "malformed event", ev.Error)
}

func TestRelayIgnoresUnknownEvents(t *testing.T) {
	conn := dialTestRelay(t)
	readEvent(t, conn) // session.update

	require.NoError(t, conn.WriteJSON(event{Type: "input_audio_buffer.append"}))
	require.NoError(t, conn.WriteJSON(event{
		Type:       "conversation.item.input_audio_transcription.completed",
		Transcript: "hello",
	}))

	answer := readEvent(t, conn)
	assert.Equal(t, "conversation.item.create", answer.Type)
}
