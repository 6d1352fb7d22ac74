package model

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a lightweight in-memory Model useful for tests.
//
// Responses are served in this order: the scripted queue (Enqueue*), then
// canned completions keyed by the latest user text (AddResponse), then a
// generated echo. Every request is recorded for assertions.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	queue     []mockResult
	responses map[string]string
	requests  []Request
}

type mockResult struct {
	resp Response
	err  error
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[prompt] = response
}

// EnqueueText scripts the next completion as a plain assistant text reply.
func (m *MockModel) EnqueueText(text string) {
	m.EnqueueResponse(Response{Content: NewAssistantContent(text), FinishReason: "stop"})
}

// EnqueueResponse scripts the next completion verbatim.
func (m *MockModel) EnqueueResponse(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = append(m.queue, mockResult{resp: resp})
}

// EnqueueError scripts the next call to fail.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = append(m.queue, mockResult{err: err})
}

// Requests returns a snapshot of every request seen so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.requests))
	copy(out, m.requests)

	return out
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]

		if next.err != nil {
			return nil, next.err
		}

		resp := next.resp

		return &resp, nil
	}

	if len(req.Contents) == 0 {
		return nil, fmt.Errorf("no contents provided")
	}

	inputText := req.Contents[len(req.Contents)-1].Text()

	full := m.responses[inputText]
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", inputText)
	}

	return &Response{Content: NewAssistantContent(full), FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

// Compile-time interface check.
var _ Model = (*MockModel)(nil)
