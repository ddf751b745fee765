package mocks

import (
	"context"

	"github.com/xbpneus/authgate/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	ObtainTokenPairFunc  func(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error)
	RefreshTokenFunc     func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	VerifyTokenFunc      func(ctx context.Context, token string) (*domain.TokenClaims, error)
	LogoutFunc           func(ctx context.Context, sessionID string) error
	CurrentPrincipalFunc func(ctx context.Context, principalID uint) (*domain.Principal, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// ObtainTokenPair issues a token pair
func (m *MockAuthService) ObtainTokenPair(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	if m.ObtainTokenPairFunc != nil {
		return m.ObtainTokenPairFunc(ctx, req)
	}
	// Default behavior: invalid credentials
	return nil, domain.ErrInvalidCredentials
}

// RefreshToken issues a new access token
func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return nil, domain.ErrTokenInvalid
}

// VerifyToken validates any token
func (m *MockAuthService) VerifyToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, token)
	}
	return nil, domain.ErrTokenInvalid
}

// Logout deletes the session
func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

// CurrentPrincipal returns the principal record
func (m *MockAuthService) CurrentPrincipal(ctx context.Context, principalID uint) (*domain.Principal, error) {
	if m.CurrentPrincipalFunc != nil {
		return m.CurrentPrincipalFunc(ctx, principalID)
	}
	return nil, domain.ErrPrincipalNotFound
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
