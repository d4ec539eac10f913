package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for tests and offline runs.
// Queued responses are served in FIFO order; once the queue is empty the
// fallback, if any, is served forever. Every request is recorded.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	fallback  *MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewMockProviderFromFile serves the content of path on every call.
func NewMockProviderFromFile(path string) (*MockProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mock response: %w", err)
	}
	m := NewMockProvider()
	m.SetFallback(MockResponse{Content: data})
	return m, nil
}

// Generate returns the next canned response. With nothing queued and no
// fallback it fails with ErrProviderUnavailable.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.fallback != nil:
		resp = *m.fallback
	default:
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("mock: no response queued")}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// SetFallback sets the response served once the queue is drained.
func (m *MockProvider) SetFallback(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &resp
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastRequest returns the most recent request, or false if none was made.
func (m *MockProvider) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
