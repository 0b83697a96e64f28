// Package core defines the shared domain types and narrow interfaces used
// across IntentFlow: intents, classification results, customer context,
// conversation messages and the store/retriever contracts. Higher level
// packages (classify, agent, orchestrator) depend on core; core depends on
// nothing above the standard library.
package core
