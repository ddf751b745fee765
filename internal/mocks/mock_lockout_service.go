package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/xbpneus/authgate/domain"
)

// MockLockoutService implements domain.LockoutService interface for testing.
// Without overrides it counts failures in memory and locks at Limit.
type MockLockoutService struct {
	IsLockedFunc        func(ctx context.Context, key string) (bool, time.Duration, error)
	RegisterFailureFunc func(ctx context.Context, key string) (bool, error)
	ResetFunc           func(ctx context.Context, key string) error
	Limit               int

	mu       sync.Mutex
	failures map[string]int
	resets   map[string]int
}

// NewMockLockoutService creates a new MockLockoutService with default behaviors
func NewMockLockoutService(limit int) *MockLockoutService {
	return &MockLockoutService{
		Limit:    limit,
		failures: make(map[string]int),
		resets:   make(map[string]int),
	}
}

// IsLocked reports whether key reached the limit
func (m *MockLockoutService) IsLocked(ctx context.Context, key string) (bool, time.Duration, error) {
	if m.IsLockedFunc != nil {
		return m.IsLockedFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Limit > 0 && m.failures[key] >= m.Limit {
		return true, 30 * time.Minute, nil
	}
	return false, 0, nil
}

// RegisterFailure counts one failure for key
func (m *MockLockoutService) RegisterFailure(ctx context.Context, key string) (bool, error) {
	if m.RegisterFailureFunc != nil {
		return m.RegisterFailureFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key]++
	return m.Limit > 0 && m.failures[key] >= m.Limit, nil
}

// Reset clears failures for key
func (m *MockLockoutService) Reset(ctx context.Context, key string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, key)
	m.resets[key]++
	return nil
}

// Failures returns the failure count recorded for key
func (m *MockLockoutService) Failures(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[key]
}

// Resets returns how many times key was reset
func (m *MockLockoutService) Resets(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[key]
}

// Compile-time interface compliance verification
var _ domain.LockoutService = (*MockLockoutService)(nil)
