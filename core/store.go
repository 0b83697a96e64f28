package core

import "context"

// ConversationStore persists per-user bounded conversation history. The
// interface is deliberately narrow so callers can substitute an in-memory
// map, a bounded cache or a distributed store without touching the
// orchestrator.
//
// Contract:
//   - Append adds a message, refreshes the record's last-updated time and
//     trims to the store's configured turn cap (oldest first).
//   - Get returns the messages in append order, or an empty slice for unseen
//     user ids and for records whose TTL has lapsed. Expired records are
//     evicted on read; a second read still returns empty, never an error.
//   - Evict removes a record unconditionally. Evicting an absent id is a no-op.
//
// Implementations must serialize mutation per user id; cross-user access
// requires no coordination.
type ConversationStore interface {
	Append(ctx context.Context, userID string, msg Message) error
	Get(ctx context.Context, userID string) ([]Message, error)
	Evict(ctx context.Context, userID string) error
}

// Retriever looks up reference snippets to ground a generated response.
// Implementations rank results most-relevant first and return at most k
// snippets. Errors degrade silently at the consumer: a failed retrieval is
// treated as "no context", never as a responder failure.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}
