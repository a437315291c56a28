package llm

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	// Truncated reports the content as cut off at the token limit.
	Truncated bool
	Err       error
}

// MockCall is one Generate call seen by the MockProvider, with the
// user and purpose labels found on its context.
type MockCall struct {
	Request Request
	UserID  string
	Purpose string
}

// Prompt returns the first user message of the request.
func (c MockCall) Prompt() string {
	for _, m := range c.Request.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// MockProvider replays canned responses in FIFO order and records every
// call. It backs the "mock" provider setting and the tests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []MockCall
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

var errNoMockResponse = errors.New("mock: no response queued")

// Generate returns the next canned response. An empty queue reports the
// provider as unavailable.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{
		Request: req,
		UserID:  UserFrom(ctx),
		Purpose: PurposeFrom(ctx),
	})

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: errNoMockResponse}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Truncated {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls, oldest first.
func (m *MockProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// LastCall returns the most recent call; ok is false before the first one.
func (m *MockProvider) LastCall() (call MockCall, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return MockCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}
