package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xbpneus/authgate/domain"
)

// placeholderPassword is hashed once per checker and compared against when
// the email is unknown, so a miss costs the same as a wrong password.
const placeholderPassword = "xbpneus-placeholder-password"

// credentialChecker holds the password and is_active checks shared by
// every backend
type credentialChecker struct {
	principals domain.PrincipalRepository
	passwords  domain.PasswordService

	once        sync.Once
	placeholder string
}

func newCredentialChecker(principals domain.PrincipalRepository, passwords domain.PasswordService) *credentialChecker {
	return &credentialChecker{principals: principals, passwords: passwords}
}

func (c *credentialChecker) placeholderHash() string {
	c.once.Do(func() {
		c.placeholder, _ = c.passwords.Hash(placeholderPassword)
	})
	return c.placeholder
}

func (c *credentialChecker) check(ctx context.Context, email, password string) (*domain.Principal, error) {
	principal, err := c.principals.FindByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		c.passwords.Verify(c.placeholderHash(), password)
		return nil, domain.NewAuthFailure(domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}

	if !c.passwords.Verify(principal.PasswordHash, password) {
		return nil, domain.NewAuthFailure(domain.ErrPasswordMismatch)
	}
	if !principal.IsActive {
		return nil, domain.NewAuthFailure(domain.ErrUserInactive)
	}
	return principal, nil
}

// ModelBackend implements domain.CredentialBackend with the stock checks:
// known email, matching password, active account.
type ModelBackend struct {
	checker *credentialChecker
}

// NewModelBackend creates a new model backend
func NewModelBackend(principals domain.PrincipalRepository, passwords domain.PasswordService) *ModelBackend {
	return &ModelBackend{checker: newCredentialChecker(principals, passwords)}
}

// Authenticate implements domain.CredentialBackend
func (b *ModelBackend) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	return b.checker.check(ctx, email, password)
}

// ApprovalBackend implements domain.CredentialBackend. On top of the model
// checks a non-admin principal's primary profile must be approved. Every
// rejection is the same uniform failure.
type ApprovalBackend struct {
	checker  *credentialChecker
	profiles domain.ProfileRepository
}

// NewApprovalBackend creates a new approval-aware backend
func NewApprovalBackend(principals domain.PrincipalRepository, profiles domain.ProfileRepository, passwords domain.PasswordService) *ApprovalBackend {
	return &ApprovalBackend{
		checker:  newCredentialChecker(principals, passwords),
		profiles: profiles,
	}
}

// Authenticate implements domain.CredentialBackend
func (b *ApprovalBackend) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	principal, err := b.checker.check(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if principal.IsSuperuser || principal.IsStaff {
		return principal, nil
	}

	profiles, err := b.profiles.ProfilesOf(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	if primary := domain.PrimaryProfile(profiles); primary != nil && !primary.Aprovado {
		return nil, domain.NewAuthFailure(domain.ErrProfileNotApproved)
	}
	return principal, nil
}

// BackendChain tries each backend in order. The first success wins;
// otherwise the first credential failure is returned. A storage error
// stops the chain.
type BackendChain struct {
	backends []domain.CredentialBackend
}

// NewBackendChain creates a chain over backends
func NewBackendChain(backends ...domain.CredentialBackend) *BackendChain {
	return &BackendChain{backends: backends}
}

// Authenticate implements domain.CredentialBackend
func (c *BackendChain) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	var first error
	for _, b := range c.backends {
		principal, err := b.Authenticate(ctx, email, password)
		if err == nil {
			return principal, nil
		}
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, err
		}
		if first == nil {
			first = err
		}
	}
	if first == nil {
		first = domain.NewAuthFailure(nil)
	}
	return nil, first
}

// Backend names understood by BuildBackendChain
const (
	BackendApproval = "approval"
	BackendModel    = "model"
)

// BuildBackendChain assembles the chain named by names, in order
func BuildBackendChain(names []string, principals domain.PrincipalRepository, profiles domain.ProfileRepository, passwords domain.PasswordService) (*BackendChain, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one credential backend is required")
	}
	backends := make([]domain.CredentialBackend, 0, len(names))
	for _, name := range names {
		switch name {
		case BackendApproval:
			backends = append(backends, NewApprovalBackend(principals, profiles, passwords))
		case BackendModel:
			backends = append(backends, NewModelBackend(principals, passwords))
		default:
			return nil, fmt.Errorf("unknown credential backend %q", name)
		}
	}
	return NewBackendChain(backends...), nil
}

var (
	_ domain.CredentialBackend = (*ModelBackend)(nil)
	_ domain.CredentialBackend = (*ApprovalBackend)(nil)
	_ domain.CredentialBackend = (*BackendChain)(nil)
)
