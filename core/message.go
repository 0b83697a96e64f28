package core

import "time"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn recorded by a ConversationStore.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMessage builds a message stamped with the current time. Metadata may be
// nil; stores must treat nil and empty metadata identically.
func NewMessage(role, content string, metadata map[string]any) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now(), Metadata: metadata}
}
