package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/xbpneus/authgate/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens have the form "<type>|<id>|<role>|<session>" and the
// default validators parse them back.
type MockTokenService struct {
	GenerateAccessTokenFunc  func(principalID uint, role domain.Role, sessionID string) (string, error)
	GenerateRefreshTokenFunc func(principalID uint, role domain.Role, sessionID string) (string, error)
	ValidateAccessTokenFunc  func(token string) (*domain.TokenClaims, error)
	ValidateRefreshTokenFunc func(token string) (*domain.TokenClaims, error)
	TTL                      time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{TTL: 15 * time.Minute}
}

// GenerateAccessToken generates an access token
func (m *MockTokenService) GenerateAccessToken(principalID uint, role domain.Role, sessionID string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(principalID, role, sessionID)
	}
	return fmt.Sprintf("access|%d|%s|%s", principalID, role, sessionID), nil
}

// GenerateRefreshToken generates a refresh token
func (m *MockTokenService) GenerateRefreshToken(principalID uint, role domain.Role, sessionID string) (string, error) {
	if m.GenerateRefreshTokenFunc != nil {
		return m.GenerateRefreshTokenFunc(principalID, role, sessionID)
	}
	return fmt.Sprintf("refresh|%d|%s|%s", principalID, role, sessionID), nil
}

// ValidateAccessToken validates an access token and returns claims
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	return parseMockToken(token, domain.TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns claims
func (m *MockTokenService) ValidateRefreshToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(token)
	}
	return parseMockToken(token, domain.TokenTypeRefresh)
}

// AccessTTL returns the configured access lifetime
func (m *MockTokenService) AccessTTL() time.Duration {
	return m.TTL
}

func parseMockToken(token string, want domain.TokenType) (*domain.TokenClaims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 4 || domain.TokenType(parts[0]) != want {
		return nil, domain.ErrTokenInvalid
	}
	var id uint
	if _, err := fmt.Sscanf(parts[1], "%d", &id); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	now := time.Now().Unix()
	return &domain.TokenClaims{
		UserID:    id,
		Role:      domain.Role(parts[2]),
		SessionID: parts[3],
		TokenType: want,
		IssuedAt:  now,
		ExpiresAt: now + 900,
	}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
