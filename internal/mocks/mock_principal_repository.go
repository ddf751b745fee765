package mocks

import (
	"context"
	"time"

	"github.com/xbpneus/authgate/domain"
)

// MockPrincipalRepository implements domain.PrincipalRepository interface for testing
type MockPrincipalRepository struct {
	FindByEmailFunc    func(ctx context.Context, email string) (*domain.Principal, error)
	FindByIDFunc       func(ctx context.Context, id uint) (*domain.Principal, error)
	RegisterFunc       func(ctx context.Context, principal *domain.Principal, profile *domain.RoleProfile) error
	ApproveFunc        func(ctx context.Context, principalID uint) (*domain.RoleProfile, error)
	TouchLastLoginFunc func(ctx context.Context, id uint, at time.Time) error
}

// NewMockPrincipalRepository creates a new MockPrincipalRepository with default behaviors
func NewMockPrincipalRepository() *MockPrincipalRepository {
	return &MockPrincipalRepository{}
}

// FindByEmail finds a principal by email
func (m *MockPrincipalRepository) FindByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a principal by ID
func (m *MockPrincipalRepository) FindByID(ctx context.Context, id uint) (*domain.Principal, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrPrincipalNotFound
}

// Register stores a principal and its profile
func (m *MockPrincipalRepository) Register(ctx context.Context, principal *domain.Principal, profile *domain.RoleProfile) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, principal, profile)
	}
	// Default behavior: assign IDs
	principal.ID = 1
	if profile != nil {
		profile.ID = 1
		profile.PrincipalID = principal.ID
	}
	return nil
}

// Approve approves the principal's profile
func (m *MockPrincipalRepository) Approve(ctx context.Context, principalID uint) (*domain.RoleProfile, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, principalID)
	}
	// Default behavior: not found
	return nil, domain.ErrPrincipalNotFound
}

// TouchLastLogin stamps the last login time
func (m *MockPrincipalRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, id, at)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.PrincipalRepository = (*MockPrincipalRepository)(nil)
