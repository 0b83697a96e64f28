// Package agent contains the specialist responders the orchestrator
// dispatches to: billing, account management and escalation. Every specialist
// follows the same discipline (best-effort knowledge lookup, model-backed
// generation when the capability is up, a deterministic templated fallback
// when it is not) so a customer always receives an answer.
package agent
