package platform

import (
	"context"
	"sync"
)

// MockProvider is an in-process session provider for tests and for running
// the worker without platform credentials.
type MockProvider struct {
	mu       sync.Mutex
	sessions []*MockSession
}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) StartSession(_ context.Context, roomName string, agent AgentDescriptor, cfg SessionConfig) (Session, <-chan ConversationItem, error) {
	items := make(chan ConversationItem, 64)
	s := &MockSession{
		RoomName: roomName,
		Agent:    agent,
		Config:   cfg,
		items:    items,
	}
	p.mu.Lock()
	p.sessions = append(p.sessions, s)
	p.mu.Unlock()
	return s, items, nil
}

// Sessions returns every session started so far.
func (p *MockProvider) Sessions() []*MockSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*MockSession, len(p.sessions))
	copy(out, p.sessions)
	return out
}

// MockSession records what it was started with and lets tests inject
// committed conversation items.
type MockSession struct {
	RoomName string
	Agent    AgentDescriptor
	Config   SessionConfig

	mu     sync.Mutex
	items  chan ConversationItem
	closed bool
}

// Emit delivers a committed conversation item to the session listener.
func (s *MockSession) Emit(item ConversationItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.items <- item
}

func (s *MockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.items)
	return nil
}
