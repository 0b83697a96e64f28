package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable signals that a generative capability could not be
// constructed or reached at all (missing credentials, unreachable endpoint).
// Components treat it as permanent for their lifetime and run in fallback
// mode without attempting further calls.
var ErrUnavailable = errors.New("generative capability unavailable")

// Request captures a normalized prompt for a single blocking generation.
// Instructions carry the system-level role description; Prompt carries the
// rendered user-facing prompt text.
type Request struct {
	Instructions string `json:"instructions,omitempty"`
	Prompt       string `json:"prompt"`
}

// Response is the completed generation for a Request.
type Response struct {
	Text string `json:"text"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal generative capability contract the routing core
// requires from a provider. Invoke blocks until the provider answers or the
// context expires; callers impose timeouts via ctx. Failures never propagate
// past the classifier or specialist boundary; they select fallbacks there.
type Model interface {
	Invoke(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// It records invocation counts so tests can assert that fallback paths make
// zero outbound calls.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	fallback  string
	err       error
	calls     int
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetDefaultResponse registers the completion returned for prompts without a
// canned response.
func (m *MockModel) SetDefaultResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// FailWith makes every subsequent Invoke return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Invoke has been called.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Invoke implements Model; returns the canned completion for the prompt or a
// generic echo when none was registered.
func (m *MockModel) Invoke(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text, ok := m.responses[req.Prompt]; ok {
		return &Response{Text: text}, nil
	}
	if m.fallback != "" {
		return &Response{Text: m.fallback}, nil
	}
	return &Response{Text: fmt.Sprintf("Mock response to: %s", req.Prompt)}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
