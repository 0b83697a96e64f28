package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/intentflow/core"
)

// Defaults for conversation record bounds.
const (
	DefaultMaxTurns = 10
	DefaultTTL      = 30 * time.Minute
)

// record is the per-user conversation state. Length never exceeds the
// store's turn cap; lastUpdated drives TTL expiry.
type record struct {
	messages    []core.Message
	lastUpdated time.Time
}

// Options configure an InMemoryStore.
type Options struct {
	// MaxTurns caps the number of retained messages per user (oldest evicted first).
	MaxTurns int
	// TTL is the idle lifetime of a record; lapsed records are evicted lazily on read.
	TTL time.Duration
	// Clock overrides time.Now, used by tests to force expiry.
	Clock func() time.Time
}

// InMemoryStore is a process-local core.ConversationStore. A single mutex
// serializes all access; even reads may mutate the map through lazy TTL
// eviction. Suited for single-process deployments and tests; use RedisStore
// when conversations must survive the process or be shared across replicas.
type InMemoryStore struct {
	mu            sync.Mutex
	conversations map[string]*record
	maxTurns      int
	ttl           time.Duration
	now           func() time.Time
}

// NewInMemoryStore constructs an InMemoryStore with bounded, time-expiring
// per-user records.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{
		MaxTurns: DefaultMaxTurns,
		TTL:      DefaultTTL,
		Clock:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		conversations: make(map[string]*record),
		maxTurns:      opts.MaxTurns,
		ttl:           opts.TTL,
		now:           opts.Clock,
	}
}

// Append adds a message to the user's record, refreshes its last-updated time
// and trims to the turn cap.
func (s *InMemoryStore) Append(_ context.Context, userID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.conversations[userID]
	if !ok {
		rec = &record{}
		s.conversations[userID] = rec
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	rec.messages = append(rec.messages, msg)
	rec.lastUpdated = s.now()

	if overflow := len(rec.messages) - s.maxTurns; overflow > 0 {
		rec.messages = append([]core.Message(nil), rec.messages[overflow:]...)
	}
	return nil
}

// Get returns the user's messages in append order. An unseen user id or an
// expired record yields an empty slice; expiry evicts the record so repeated
// reads stay empty without error.
func (s *InMemoryStore) Get(_ context.Context, userID string) ([]core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.conversations[userID]
	if !ok {
		return []core.Message{}, nil
	}
	if s.now().Sub(rec.lastUpdated) > s.ttl {
		delete(s.conversations, userID)
		return []core.Message{}, nil
	}

	out := make([]core.Message, len(rec.messages))
	copy(out, rec.messages)
	return out, nil
}

// Evict removes the user's record. Absent ids are a no-op.
func (s *InMemoryStore) Evict(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, userID)
	return nil
}
