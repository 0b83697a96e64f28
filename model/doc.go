// Package model defines the generative capability contract consumed by the
// classifier and the specialist responders, plus a MockModel for tests.
// Provider adapters live in the model/openai and model/anthropic sub-packages;
// the core never depends on a particular provider's wire protocol.
package model
