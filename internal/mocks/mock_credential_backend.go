package mocks

import (
	"context"

	"github.com/xbpneus/authgate/domain"
)

// MockCredentialBackend implements domain.CredentialBackend interface for testing
type MockCredentialBackend struct {
	AuthenticateFunc func(ctx context.Context, email, password string) (*domain.Principal, error)
	Calls            int
}

// NewMockCredentialBackend creates a new MockCredentialBackend with default behaviors
func NewMockCredentialBackend() *MockCredentialBackend {
	return &MockCredentialBackend{}
}

// Authenticate verifies credentials
func (m *MockCredentialBackend) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	m.Calls++
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	// Default behavior: unknown user
	return nil, domain.NewAuthFailure(domain.ErrUserNotFound)
}

// Compile-time interface compliance verification
var _ domain.CredentialBackend = (*MockCredentialBackend)(nil)
