// Package server exposes the routing pipeline over HTTP. It is a thin
// boundary: requests are decoded, handed to the orchestrator, and the
// orchestrator's response is returned verbatim. Routing policy, fallbacks and
// memory all live below this layer.
package server
