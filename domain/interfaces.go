package domain

import (
	"context"
	"time"
)

// PrincipalRepository defines credential store operations
type PrincipalRepository interface {
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	FindByID(ctx context.Context, id uint) (*Principal, error)
	// Register stores a new principal and its single profile atomically
	Register(ctx context.Context, principal *Principal, profile *RoleProfile) error
	// Approve moves the principal's profile from PENDING to APPROVED and
	// activates the principal atomically
	Approve(ctx context.Context, principalID uint) (*RoleProfile, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// ProfileRepository defines role profile lookups
type ProfileRepository interface {
	ProfilesOf(ctx context.Context, principalID uint) ([]RoleProfile, error)
	ListPending(ctx context.Context) ([]PendingAccount, error)
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// CredentialBackend verifies raw credentials. Every credential failure is
// an *AuthFailure; any other error is a storage failure.
type CredentialBackend interface {
	Authenticate(ctx context.Context, email, password string) (*Principal, error)
}

// AuthService issues and manages session tokens
type AuthService interface {
	ObtainTokenPair(ctx context.Context, req LoginRequest) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	VerifyToken(ctx context.Context, token string) (*TokenClaims, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentPrincipal(ctx context.Context, principalID uint) (*Principal, error)
}

// RegistrationService handles self-registration and administrator approval
type RegistrationService interface {
	Register(ctx context.Context, req RegistrationRequest) (*Principal, *RoleProfile, error)
	Approve(ctx context.Context, principalID, approverID uint) (*RoleProfile, error)
	ListPending(ctx context.Context) ([]PendingAccount, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(principalID uint, role Role, sessionID string) (string, error)
	GenerateRefreshToken(principalID uint, role Role, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
	AccessTTL() time.Duration
}

// LockoutService tracks failed login attempts per key
type LockoutService interface {
	IsLocked(ctx context.Context, key string) (bool, time.Duration, error)
	RegisterFailure(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// MetricsSink records counters and histogram observations
type MetricsSink interface {
	Increment(ctx context.Context, counter string)
	Observe(ctx context.Context, histogram string, value float64)
}

// EventPublisher publishes domain events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// TokenType distinguishes access from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    uint      `json:"user_id"`
	Role      Role      `json:"user_role"`
	SessionID string    `json:"session_id,omitempty"`
	TokenType TokenType `json:"token_type"`
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
	JTI       string    `json:"jti"`
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer.
// Rule changes are persisted by the enforcer's adapter as they happen.
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}
