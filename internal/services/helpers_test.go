package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/xbpneus/authgate/domain"
	"github.com/xbpneus/authgate/internal/mocks"
)

const testPassword = "Senha@123"

// authFixture wires mock collaborators around an in-memory principal store
type authFixture struct {
	principals *mocks.MockPrincipalRepository
	profiles   *mocks.MockProfileRepository
	sessions   *mocks.MockSessionRepository
	passwords  *mocks.MockPasswordService
	tokens     *mocks.MockTokenService
	lockout    *mocks.MockLockoutService
	metrics    *mocks.MockMetricsSink
	audit      *mocks.MockAuditLogger

	mu          sync.Mutex
	byEmail     map[string]*domain.Principal
	profilesOf  map[uint][]domain.RoleProfile
	sessionByID map[string]*domain.Session
	touched     map[uint]time.Time
}

// newAuthFixture creates a fixture whose mocks read and write its maps
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		principals:  mocks.NewMockPrincipalRepository(),
		profiles:    mocks.NewMockProfileRepository(),
		sessions:    mocks.NewMockSessionRepository(),
		passwords:   mocks.NewMockPasswordService(),
		tokens:      mocks.NewMockTokenService(),
		lockout:     mocks.NewMockLockoutService(5),
		metrics:     mocks.NewMockMetricsSink(),
		audit:       mocks.NewMockAuditLogger(),
		byEmail:     make(map[string]*domain.Principal),
		profilesOf:  make(map[uint][]domain.RoleProfile),
		sessionByID: make(map[string]*domain.Session),
		touched:     make(map[uint]time.Time),
	}

	f.principals.FindByEmailFunc = func(ctx context.Context, email string) (*domain.Principal, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if p, ok := f.byEmail[email]; ok {
			cp := *p
			return &cp, nil
		}
		return nil, domain.ErrUserNotFound
	}
	f.principals.FindByIDFunc = func(ctx context.Context, id uint) (*domain.Principal, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, p := range f.byEmail {
			if p.ID == id {
				cp := *p
				return &cp, nil
			}
		}
		return nil, domain.ErrPrincipalNotFound
	}
	f.principals.TouchLastLoginFunc = func(ctx context.Context, id uint, at time.Time) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.touched[id] = at
		return nil
	}
	f.profiles.ProfilesOfFunc = func(ctx context.Context, principalID uint) ([]domain.RoleProfile, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		return append([]domain.RoleProfile(nil), f.profilesOf[principalID]...), nil
	}
	f.sessions.CreateFunc = func(ctx context.Context, session *domain.Session) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		cp := *session
		f.sessionByID[session.ID] = &cp
		return nil
	}
	f.sessions.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if s, ok := f.sessionByID[sessionID]; ok {
			cp := *s
			return &cp, nil
		}
		return nil, domain.ErrSessionNotFound
	}
	f.sessions.DeleteFunc = func(ctx context.Context, sessionID string) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.sessionByID, sessionID)
		return nil
	}
	return f
}

// addPrincipal stores p with the password testPassword and the given profiles
func (f *authFixture) addPrincipal(p domain.Principal, profiles ...domain.RoleProfile) *domain.Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.PasswordHash == "" {
		p.PasswordHash = "hashed_" + testPassword
	}
	p.Email = domain.NormalizeEmail(p.Email)
	for i := range profiles {
		profiles[i].PrincipalID = p.ID
	}
	f.byEmail[p.Email] = &p
	f.profilesOf[p.ID] = profiles
	return &p
}

// setProfiles replaces the profiles attached to a principal
func (f *authFixture) setProfiles(principalID uint, profiles ...domain.RoleProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profilesOf[principalID] = profiles
}

// sessionCount returns the number of live sessions
func (f *authFixture) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessionByID)
}

// service builds an AuthServiceImpl over the named backend chain
func (f *authFixture) service(t *testing.T, backends ...string) *AuthServiceImpl {
	t.Helper()

	if len(backends) == 0 {
		backends = []string{BackendApproval, BackendModel}
	}
	chain, err := BuildBackendChain(backends, f.principals, f.profiles, f.passwords)
	if err != nil {
		t.Fatalf("failed to build backend chain: %v", err)
	}
	return NewAuthService(f.principals, f.profiles, f.sessions, chain, f.tokens, f.lockout, f.metrics, f.audit,
		AuthOptions{SessionTTL: 7 * 24 * time.Hour, UpdateLastLogin: true})
}

func approvedProfile(kind domain.ProfileKind) domain.RoleProfile {
	return domain.RoleProfile{Kind: kind, Aprovado: true}
}

func pendingProfile(kind domain.ProfileKind) domain.RoleProfile {
	return domain.RoleProfile{Kind: kind, Aprovado: false}
}

func loginRequest(email, password string) domain.LoginRequest {
	return domain.LoginRequest{Email: email, Password: password, ClientIP: "10.0.0.1"}
}

// createTestContext creates a context for testing with timeout
func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// assertAuthResult validates the structure and content of an AuthResult
func assertAuthResult(t *testing.T, result *domain.AuthResult, expectedID uint, expectedRole domain.Role) {
	t.Helper()

	if result == nil {
		t.Fatal("AuthResult is nil")
	}
	if result.Principal == nil || result.Principal.ID != expectedID {
		t.Fatalf("expected principal %d, got %+v", expectedID, result.Principal)
	}
	if result.Role != expectedRole {
		t.Errorf("expected role %s, got %s", expectedRole, result.Role)
	}
	if result.AccessToken == "" {
		t.Error("AccessToken is empty")
	}
	if result.RefreshToken == "" {
		t.Error("RefreshToken is empty")
	}
	if result.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if result.ExpiresIn <= 0 {
		t.Errorf("expected positive ExpiresIn, got %d", result.ExpiresIn)
	}
}
