// Package orchestrator implements the routing state machine at the heart of
// IntentFlow: classify a query, gate on confidence, dispatch to a specialist
// responder, and return the response with its routing metadata. The routing
// policy lives here and nowhere else; boundaries consume the orchestrator's
// output instead of re-encoding intent mappings.
package orchestrator
