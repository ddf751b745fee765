package mocks

import (
	"context"

	"github.com/xbpneus/authgate/domain"
)

// MockProfileRepository implements domain.ProfileRepository interface for testing
type MockProfileRepository struct {
	ProfilesOfFunc  func(ctx context.Context, principalID uint) ([]domain.RoleProfile, error)
	ListPendingFunc func(ctx context.Context) ([]domain.PendingAccount, error)
}

// NewMockProfileRepository creates a new MockProfileRepository with default behaviors
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{}
}

// ProfilesOf returns the profiles attached to a principal
func (m *MockProfileRepository) ProfilesOf(ctx context.Context, principalID uint) ([]domain.RoleProfile, error) {
	if m.ProfilesOfFunc != nil {
		return m.ProfilesOfFunc(ctx, principalID)
	}
	// Default behavior: no profile attached
	return nil, nil
}

// ListPending returns accounts awaiting approval
func (m *MockProfileRepository) ListPending(ctx context.Context) ([]domain.PendingAccount, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.ProfileRepository = (*MockProfileRepository)(nil)
