package api

import (
	"context"
	"sync"
)

// SendCall records one call to MockSender.Send
type SendCall struct {
	Endpoint string
	Message  string
}

// MockSender is a scripted chat sender for tests of the session and the UI
type MockSender struct {
	// Mock return values
	Reply string
	Err   error
	// Handler overrides Reply/Err when set
	Handler func(ctx context.Context, endpoint, message string) (string, error)
	// Gate, when non-nil, holds every Send until it is closed
	Gate chan struct{}

	mu    sync.Mutex
	calls []SendCall
	// started receives one value per Send before it waits on Gate
	started chan struct{}
}

// NewMockSender creates a sender that answers every message with reply
func NewMockSender(reply string) *MockSender {
	return &MockSender{Reply: reply}
}

// NewBlockingMockSender creates a sender whose calls stay in flight until
// Release is called
func NewBlockingMockSender(reply string) *MockSender {
	return &MockSender{
		Reply:   reply,
		Gate:    make(chan struct{}),
		started: make(chan struct{}, 64),
	}
}

// Send implements chat.Sender
func (m *MockSender) Send(ctx context.Context, endpoint, message string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, SendCall{Endpoint: endpoint, Message: message})
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.Handler != nil {
		return m.Handler(ctx, endpoint, message)
	}
	return m.Reply, m.Err
}

// Started returns a channel that receives once per call, or nil for a
// non-blocking sender
func (m *MockSender) Started() <-chan struct{} {
	return m.started
}

// Release lets every held and future call complete
func (m *MockSender) Release() {
	if m.Gate != nil {
		close(m.Gate)
	}
}

// Calls returns the recorded calls
func (m *MockSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SendCall(nil), m.calls...)
}

// CallCount returns how many times Send was called
func (m *MockSender) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
