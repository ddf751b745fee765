package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/xbpneus/authgate/domain"
)

// Metric names recorded by the token endpoints
const (
	MetricLoginSuccess       = "auth.login.success"
	MetricLoginInvalid       = "auth.login.invalid_credentials"
	MetricLoginPending       = "auth.login.pending_approval"
	MetricLoginLocked        = "auth.login.locked"
	MetricLoginDuration      = "auth.login.duration_ms"
	MetricTokenRefreshed     = "auth.token.refreshed"
	MetricTokenRefreshFailed = "auth.token.refresh_failed"
)

// AuthOptions tunes token issuance
type AuthOptions struct {
	// SessionTTL should equal the refresh token lifetime
	SessionTTL      time.Duration
	UpdateLastLogin bool
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	principals domain.PrincipalRepository
	profiles   domain.ProfileRepository
	sessions   domain.SessionRepository
	backend    domain.CredentialBackend
	tokens     domain.TokenService
	lockout    domain.LockoutService
	metrics    domain.MetricsSink
	audit      domain.AuditLogger
	opts       AuthOptions
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	principals domain.PrincipalRepository,
	profiles domain.ProfileRepository,
	sessions domain.SessionRepository,
	backend domain.CredentialBackend,
	tokens domain.TokenService,
	lockout domain.LockoutService,
	metrics domain.MetricsSink,
	audit domain.AuditLogger,
	opts AuthOptions,
) *AuthServiceImpl {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	return &AuthServiceImpl{
		principals: principals,
		profiles:   profiles,
		sessions:   sessions,
		backend:    backend,
		tokens:     tokens,
		lockout:    lockout,
		metrics:    metrics,
		audit:      audit,
		opts:       opts,
		now:        time.Now,
	}
}

// LockoutKey is the attempt key shared by the lockout counter and lock
func LockoutKey(email, clientIP string) string {
	return domain.NormalizeEmail(email) + "|" + clientIP
}

// ObtainTokenPair implements domain.AuthService. The backend chain is the
// coarse gate; approval is then re-checked on its own so a pending account
// gets ErrPendingApproval instead of the uniform credential failure.
func (s *AuthServiceImpl) ObtainTokenPair(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	start := s.now()
	defer func() {
		s.metrics.Observe(ctx, MetricLoginDuration, float64(s.now().Sub(start).Milliseconds()))
	}()

	email := domain.NormalizeEmail(req.Email)
	key := LockoutKey(email, req.ClientIP)

	locked, remaining, err := s.lockout.IsLocked(ctx, key)
	if err != nil {
		log.Printf("EVENT: lockout_check_failed email=%s ip=%s err=%v", email, req.ClientIP, err)
	}
	if locked {
		s.metrics.Increment(ctx, MetricLoginLocked)
		s.logAudit(ctx, domain.NewAuditEvent(domain.LoginLockedEvent, 0).
			WithEmail(email).WithIP(req.ClientIP).
			WithMetadata("remaining_seconds", int64(remaining.Seconds())).
			WithError(domain.ErrAccountLocked))
		return nil, domain.ErrAccountLocked
	}

	principal, err := s.backend.Authenticate(ctx, email, req.Password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
		s.metrics.Increment(ctx, MetricLoginInvalid)
		nowLocked, lerr := s.lockout.RegisterFailure(ctx, key)
		if lerr != nil {
			log.Printf("EVENT: lockout_register_failed email=%s ip=%s err=%v", email, req.ClientIP, lerr)
		}
		s.logAudit(ctx, domain.NewAuditEvent(domain.LoginFailureEvent, 0).
			WithEmail(email).WithIP(req.ClientIP).
			WithMetadata("reason", domain.FailureReason(err).Error()).
			WithMetadata("locked", nowLocked).
			WithError(err))
		return nil, err
	}

	profiles, err := s.profiles.ProfilesOf(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	if domain.ApprovalPending(principal, profiles) {
		s.metrics.Increment(ctx, MetricLoginPending)
		s.logAudit(ctx, domain.NewAuditEvent(domain.LoginPendingEvent, principal.ID).
			WithEmail(email).WithIP(req.ClientIP).
			WithError(domain.ErrPendingApproval))
		return nil, domain.ErrPendingApproval
	}

	role := domain.ResolveRole(principal, profiles)

	if err := s.lockout.Reset(ctx, key); err != nil {
		log.Printf("EVENT: lockout_reset_failed email=%s ip=%s err=%v", email, req.ClientIP, err)
	}

	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    principal.ID,
		Role:      role,
		ExpiresAt: now.Add(s.opts.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(principal.ID, role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(principal.ID, role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if s.opts.UpdateLastLogin {
		if err := s.principals.TouchLastLogin(ctx, principal.ID, now); err != nil {
			log.Printf("EVENT: last_login_update_failed user_id=%d err=%v", principal.ID, err)
		} else {
			principal.LastLogin = &now
		}
	}

	s.metrics.Increment(ctx, MetricLoginSuccess)
	s.logAudit(ctx, domain.NewAuditEvent(domain.TokenIssuedEvent, principal.ID).
		WithEmail(email).WithIP(req.ClientIP).WithRole(role).WithSession(session.ID))

	return &domain.AuthResult{
		Principal:    principal,
		Role:         role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// RefreshToken implements domain.AuthService. The new access token carries
// the role claim of the refresh token unchanged.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.metrics.Increment(ctx, MetricTokenRefreshFailed)
		return nil, domain.ErrTokenInvalid
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
			s.metrics.Increment(ctx, MetricTokenRefreshFailed)
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.UserID {
		s.metrics.Increment(ctx, MetricTokenRefreshFailed)
		return nil, domain.ErrTokenInvalid
	}

	accessToken, err := s.tokens.GenerateAccessToken(claims.UserID, claims.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.metrics.Increment(ctx, MetricTokenRefreshed)
	return &domain.AuthResult{
		Role:         claims.Role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// VerifyToken implements domain.AuthService. Either token type is accepted.
func (s *AuthServiceImpl) VerifyToken(_ context.Context, token string) (*domain.TokenClaims, error) {
	if claims, err := s.tokens.ValidateAccessToken(token); err == nil {
		return claims, nil
	}
	if claims, err := s.tokens.ValidateRefreshToken(token); err == nil {
		return claims, nil
	}
	return nil, domain.ErrTokenInvalid
}

// Logout implements domain.AuthService
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	var userID uint
	if id, ok := domain.IdentityFrom(ctx); ok {
		userID = id.PrincipalID
	}
	s.logAudit(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, userID).WithSession(sessionID))
	return nil
}

// CurrentPrincipal implements domain.AuthService
func (s *AuthServiceImpl) CurrentPrincipal(ctx context.Context, principalID uint) (*domain.Principal, error) {
	return s.principals.FindByID(ctx, principalID)
}

func (s *AuthServiceImpl) logAudit(ctx context.Context, event *domain.AuditEvent) {
	if err := s.audit.LogEvent(ctx, event); err != nil {
		log.Printf("EVENT: audit_write_failed type=%s err=%v", event.EventType, err)
	}
}

var _ domain.AuthService = (*AuthServiceImpl)(nil)
