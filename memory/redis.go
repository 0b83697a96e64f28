package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/intentflow/core"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a core.ConversationStore backed by a Redis list per user.
// Turn capping uses LTRIM and TTL expiry uses the key's own expiration,
// refreshed on every append, so the record lifecycle matches InMemoryStore:
// idle records vanish, active ones keep only the most recent turns. Append
// runs in a transactional pipeline, which serializes per-user mutation.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	maxTurns  int
	ttl       time.Duration
}

// RedisOptions configure a RedisStore.
type RedisOptions struct {
	// KeyPrefix namespaces conversation keys (default "intentflow:conv:").
	KeyPrefix string
	// MaxTurns caps retained messages per user.
	MaxTurns int
	// TTL is the idle lifetime of a conversation key.
	TTL time.Duration
}

// NewRedisStore constructs a RedisStore on top of an existing client.
func NewRedisStore(client redis.UniversalClient, optFns ...func(o *RedisOptions)) *RedisStore {
	opts := RedisOptions{
		KeyPrefix: "intentflow:conv:",
		MaxTurns:  DefaultMaxTurns,
		TTL:       DefaultTTL,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, keyPrefix: opts.KeyPrefix, maxTurns: opts.MaxTurns, ttl: opts.TTL}
}

func (s *RedisStore) key(userID string) string { return s.keyPrefix + userID }

// Append pushes a message, trims to the turn cap and refreshes the TTL.
func (s *RedisStore) Append(ctx context.Context, userID string, msg core.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := s.key(userID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append conversation %s: %w", userID, err)
	}
	return nil
}

// Get returns the user's messages in append order. Expired or unseen keys
// simply read as empty; Redis handles the eviction itself.
func (s *RedisStore) Get(ctx context.Context, userID string) ([]core.Message, error) {
	raw, err := s.client.LRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read conversation %s: %w", userID, err)
	}
	messages := make([]core.Message, 0, len(raw))
	for _, item := range raw {
		var msg core.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode conversation %s: %w", userID, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Evict deletes the user's conversation key.
func (s *RedisStore) Evict(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("evict conversation %s: %w", userID, err)
	}
	return nil
}
