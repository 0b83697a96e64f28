// Package voice relays realtime voice events onto the routing pipeline. The
// relay speaks a small subset of the OpenAI Realtime event vocabulary: it
// announces session configuration on connect, turns completed speech
// transcriptions into orchestrated queries, and emits the answer as an
// assistant text item followed by a response.create trigger so the peer
// synthesizes speech. Audio itself never touches this process.
package voice

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hupe1980/intentflow/logging"
	"github.com/hupe1980/intentflow/orchestrator"
)

const (
	eventSessionUpdate         = "session.update"
	eventTranscriptionComplete = "conversation.item.input_audio_transcription.completed"
	eventItemCreate            = "conversation.item.create"
	eventResponseCreate        = "response.create"
	eventResponseDone          = "response.done"
	eventError                 = "error"

	writeWait = 10 * time.Second
)

// sessionConfig mirrors the realtime session settings the relay announces on
// connect.
var sessionConfig = map[string]any{
	"modalities":                []string{"text", "audio"},
	"instructions":              "You are a helpful customer service agent. Respond naturally and conversationally.",
	"voice":                     "alloy",
	"input_audio_format":        "pcm16",
	"output_audio_format":       "pcm16",
	"input_audio_transcription": map[string]any{"model": "whisper-1"},
	"turn_detection":            map[string]any{"type": "server_vad"},
}

// event is the wire frame; only the fields the relay reads are decoded.
type event struct {
	Type       string         `json:"type"`
	Transcript string         `json:"transcript,omitempty"`
	Session    map[string]any `json:"session,omitempty"`
	Item       *item          `json:"item,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type item struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Options configure a Relay.
type Options struct {
	Logger logging.Logger
}

// Relay is an http.Handler that upgrades to a websocket and bridges
// transcription events to the orchestrator.
type Relay struct {
	orch     *orchestrator.Orchestrator
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewRelay constructs a Relay over the orchestrator.
func NewRelay(orch *orchestrator.Orchestrator, optFns ...func(o *Options)) *Relay {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Relay{
		orch: orch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  8192,
			WriteBufferSize: 8192,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		logger: opts.Logger,
	}
}

// ServeHTTP upgrades the connection and processes events until the peer
// disconnects. The user id comes from the user_id query parameter so every
// transcribed turn lands in that user's conversation memory.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("voice upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	userID := req.URL.Query().Get("user_id")

	// writes can come from the read loop only, but keep the mutex so a later
	// keepalive writer cannot corrupt frames
	var writeMu sync.Mutex
	send := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	if err := send(event{Type: eventSessionUpdate, Session: sessionConfig}); err != nil {
		r.logger.Warn("voice session announce failed", "error", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Warn("voice connection closed unexpectedly", "error", err)
			}
			return
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			if sendErr := send(event{Type: eventError, Error: "malformed event"}); sendErr != nil {
				return
			}
			continue
		}

		switch ev.Type {
		case eventTranscriptionComplete:
			if err := r.handleTranscript(req, send, userID, ev.Transcript); err != nil {
				return
			}
		case eventResponseDone:
			r.logger.Debug("voice response completed", "user_id", userID)
		default:
			// audio buffer appends and other realtime chatter are not ours
		}
	}
}

// handleTranscript routes one transcribed utterance and emits the answer as
// an assistant text item plus the response trigger.
func (r *Relay) handleTranscript(req *http.Request, send func(any) error, userID, transcript string) error {
	resp, err := r.orch.ProcessQuery(req.Context(), userID, transcript, nil)
	if err != nil {
		return send(event{Type: eventError, Error: err.Error()})
	}

	if err := send(event{
		Type: eventItemCreate,
		Item: &item{
			Type:    "message",
			Role:    "assistant",
			Content: []contentPart{{Type: "text", Text: resp.Response}},
		},
	}); err != nil {
		return err
	}
	return send(event{Type: eventResponseCreate})
}
