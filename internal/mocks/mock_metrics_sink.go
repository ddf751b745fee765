package mocks

import (
	"context"
	"sync"

	"github.com/xbpneus/authgate/domain"
)

// MockMetricsSink implements domain.MetricsSink interface for testing
type MockMetricsSink struct {
	mu           sync.Mutex
	counters     map[string]int
	observations map[string][]float64
}

// NewMockMetricsSink creates a new MockMetricsSink
func NewMockMetricsSink() *MockMetricsSink {
	return &MockMetricsSink{
		counters:     make(map[string]int),
		observations: make(map[string][]float64),
	}
}

// Increment records one increment of counter
func (m *MockMetricsSink) Increment(_ context.Context, counter string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[counter]++
}

// Observe records value under histogram
func (m *MockMetricsSink) Observe(_ context.Context, histogram string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations[histogram] = append(m.observations[histogram], value)
}

// Count returns the value of counter
func (m *MockMetricsSink) Count(counter string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[counter]
}

// Observations returns the values recorded under histogram
func (m *MockMetricsSink) Observations(histogram string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.observations[histogram]...)
}

// Compile-time interface compliance verification
var _ domain.MetricsSink = (*MockMetricsSink)(nil)
