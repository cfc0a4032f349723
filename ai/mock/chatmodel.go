package mock

import (
	"context"
	"sync"
)

// MockChatModel is a test double for ai.ChatModel.
// Responses are consumed from a queue in FIFO order, which lets tests script
// malformed-then-valid sequences for retry paths. When the queue is empty the
// model falls back to CompleteFunc, then to an empty string.
type MockChatModel struct {
	// CompleteFunc is called by Complete when the response queue is empty.
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	mu        sync.Mutex
	responses []queued
	calls     []Call
}

type queued struct {
	text string
	err  error
}

// Call records one Complete invocation for test assertions.
type Call struct {
	System string
	User   string
}

// NewMockChatModel creates a mock chat model with an empty response queue.
// Note: Returns concrete type to allow test assertions.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// QueueResponse appends a successful response to the queue.
func (m *MockChatModel) QueueResponse(text string) *MockChatModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, queued{text: text})
	return m
}

// QueueError appends a failing call to the queue.
func (m *MockChatModel) QueueError(err error) *MockChatModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, queued{err: err})
	return m
}

// Complete pops the next queued response, or delegates to CompleteFunc.
func (m *MockChatModel) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{System: system, User: user})

	if len(m.responses) > 0 {
		next := m.responses[0]
		m.responses = m.responses[1:]
		m.mu.Unlock()
		return next.text, next.err
	}
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}
	return "", nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of all recorded invocations.
func (m *MockChatModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent invocation, or a zero Call when none.
func (m *MockChatModel) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Call{}
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears the queue, recorded calls, and custom function.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = nil
	m.calls = nil
	m.CompleteFunc = nil
}
