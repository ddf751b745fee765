package mocks

import (
	"context"
	"sync"

	"github.com/xbpneus/authgate/domain"
)

// PublishedEvent is one call recorded by MockEventPublisher
type PublishedEvent struct {
	RoutingKey string
	Event      any
}

// MockEventPublisher implements domain.EventPublisher interface for testing
type MockEventPublisher struct {
	PublishFunc func(ctx context.Context, routingKey string, event any) error

	mu        sync.Mutex
	Published []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	m.mu.Lock()
	m.Published = append(m.Published, PublishedEvent{RoutingKey: routingKey, Event: event})
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, routingKey, event)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.EventPublisher = (*MockEventPublisher)(nil)
