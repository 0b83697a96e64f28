// Package memory provides core.ConversationStore implementations: a
// process-local InMemoryStore and a Redis-backed RedisStore. Both enforce the
// same record lifecycle (bounded turn count, TTL expiry, append-only
// mutation) so the orchestrator can be wired to either without behavioral
// drift. The package also computes the advisory context summary specialists
// receive.
package memory
