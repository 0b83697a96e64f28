package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/intentflow/core"
)

// summaryWindow is the number of trailing messages inspected for the summary.
const summaryWindow = 3

// Summarize distills the tail of a conversation into a short advisory string
// for specialist prompts. User turns contribute "Customer asked: <content>";
// other turns carrying an intent metadata key contribute "Classified as:
// <intent>". Parts are joined with " | ". An empty conversation yields "".
func Summarize(messages []core.Message) string {
	if len(messages) == 0 {
		return ""
	}
	start := len(messages) - summaryWindow
	if start < 0 {
		start = 0
	}

	var parts []string
	for _, msg := range messages[start:] {
		if msg.Role == core.RoleUser {
			parts = append(parts, fmt.Sprintf("Customer asked: %s", msg.Content))
		} else if intent, ok := msg.Metadata["intent"]; ok {
			parts = append(parts, fmt.Sprintf("Classified as: %v", intent))
		}
	}
	return strings.Join(parts, " | ")
}

// ContextSummary reads the user's conversation from the store and summarizes
// it. Store errors yield an empty summary: context is advisory, never a
// reason to fail a query.
func ContextSummary(ctx context.Context, store core.ConversationStore, userID string) string {
	messages, err := store.Get(ctx, userID)
	if err != nil {
		return ""
	}
	return Summarize(messages)
}
