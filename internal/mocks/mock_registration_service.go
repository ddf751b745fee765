package mocks

import (
	"context"

	"github.com/xbpneus/authgate/domain"
)

// MockRegistrationService implements domain.RegistrationService interface for testing
type MockRegistrationService struct {
	RegisterFunc    func(ctx context.Context, req domain.RegistrationRequest) (*domain.Principal, *domain.RoleProfile, error)
	ApproveFunc     func(ctx context.Context, principalID, approverID uint) (*domain.RoleProfile, error)
	ListPendingFunc func(ctx context.Context) ([]domain.PendingAccount, error)
}

// NewMockRegistrationService creates a new MockRegistrationService with default behaviors
func NewMockRegistrationService() *MockRegistrationService {
	return &MockRegistrationService{}
}

// Register creates a pending account
func (m *MockRegistrationService) Register(ctx context.Context, req domain.RegistrationRequest) (*domain.Principal, *domain.RoleProfile, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	p := &domain.Principal{ID: 1, Email: req.Email}
	return p, &domain.RoleProfile{ID: 1, PrincipalID: 1, Kind: req.Kind}, nil
}

// Approve approves an account
func (m *MockRegistrationService) Approve(ctx context.Context, principalID, approverID uint) (*domain.RoleProfile, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, principalID, approverID)
	}
	return nil, domain.ErrPrincipalNotFound
}

// ListPending lists accounts awaiting approval
func (m *MockRegistrationService) ListPending(ctx context.Context) ([]domain.PendingAccount, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.RegistrationService = (*MockRegistrationService)(nil)
