package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xbpneus/authgate/domain"
	"github.com/xbpneus/authgate/internal/mocks"
)

type registrationFixture struct {
	principals *mocks.MockPrincipalRepository
	profiles   *mocks.MockProfileRepository
	passwords  *mocks.MockPasswordService
	events     *mocks.MockEventPublisher
	notifier   *mocks.MockNotificationService
	audit      *mocks.MockAuditLogger
	svc        *RegistrationServiceImpl
}

func newRegistrationFixture() *registrationFixture {
	f := &registrationFixture{
		principals: mocks.NewMockPrincipalRepository(),
		profiles:   mocks.NewMockProfileRepository(),
		passwords:  mocks.NewMockPasswordService(),
		events:     mocks.NewMockEventPublisher(),
		notifier:   mocks.NewMockNotificationService(),
		audit:      mocks.NewMockAuditLogger(),
	}
	f.svc = NewRegistrationService(f.principals, f.profiles, f.passwords, f.events, f.notifier, f.audit)
	return f
}

func validRegistration() domain.RegistrationRequest {
	return domain.RegistrationRequest{
		Email:       " Nova.Borracharia@Teste.com",
		Password:    testPassword,
		Kind:        domain.KindTireShop,
		CompanyName: "Borracharia Central",
		TaxID:       "12.345.678/0001-90",
		Phone:       "+5511999990000",
	}
}

func TestRegistrationServiceImpl_Register(t *testing.T) {
	f := newRegistrationFixture()

	var stored *domain.Principal
	var storedProfile *domain.RoleProfile
	f.principals.RegisterFunc = func(ctx context.Context, principal *domain.Principal, profile *domain.RoleProfile) error {
		principal.ID = 11
		profile.ID = 21
		profile.PrincipalID = 11
		stored, storedProfile = principal, profile
		return nil
	}

	principal, profile, err := f.svc.Register(createTestContext(t), validRegistration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if principal != stored || profile != storedProfile {
		t.Error("expected the stored records to be returned")
	}
	if principal.Email != "nova.borracharia@teste.com" {
		t.Errorf("expected normalized email, got %q", principal.Email)
	}
	if principal.IsActive || principal.IsStaff || principal.IsSuperuser {
		t.Errorf("new principal must be inactive and unprivileged: %+v", principal)
	}
	if principal.PasswordHash != "hashed_"+testPassword {
		t.Errorf("expected hashed password, got %q", principal.PasswordHash)
	}
	if profile.Aprovado || profile.State() != domain.StatePending {
		t.Error("new profile must be pending")
	}
	if profile.Kind != domain.KindTireShop || profile.CompanyName != "Borracharia Central" || profile.Phone != "+5511999990000" {
		t.Errorf("unexpected profile %+v", profile)
	}

	if len(f.events.Published) != 1 {
		t.Fatalf("expected one published event, got %d", len(f.events.Published))
	}
	pub := f.events.Published[0]
	if pub.RoutingKey != domain.RoutingKeyRegistered {
		t.Errorf("expected routing key %s, got %s", domain.RoutingKeyRegistered, pub.RoutingKey)
	}
	msg, ok := pub.Event.(domain.RegisteredMessage)
	if !ok {
		t.Fatalf("expected RegisteredMessage, got %T", pub.Event)
	}
	if msg.PrincipalID != 11 || msg.Kind != domain.KindTireShop || msg.Email != "nova.borracharia@teste.com" {
		t.Errorf("unexpected message %+v", msg)
	}

	if event := f.audit.Last(domain.PrincipalRegisteredEvent); event == nil || event.UserID != 11 {
		t.Errorf("unexpected audit event %+v", event)
	}
	if len(f.notifier.Sent) != 0 {
		t.Error("registration must not send SMS")
	}
}

func TestRegistrationServiceImpl_Register_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     func() domain.RegistrationRequest
		setup   func(f *registrationFixture)
		wantErr error
		wantMsg string
	}{
		{
			name: "unknown kind",
			req: func() domain.RegistrationRequest {
				r := validRegistration()
				r.Kind = "admin"
				return r
			},
			wantErr: domain.ErrInvalidProfileKind,
		},
		{
			name: "duplicate email",
			req:  validRegistration,
			setup: func(f *registrationFixture) {
				f.principals.RegisterFunc = func(context.Context, *domain.Principal, *domain.RoleProfile) error {
					return domain.ErrPrincipalAlreadyExists
				}
			},
			wantErr: domain.ErrPrincipalAlreadyExists,
			wantMsg: "failed to register principal",
		},
		{
			name: "hashing fails",
			req:  validRegistration,
			setup: func(f *registrationFixture) {
				f.passwords.HashFunc = func(string) (string, error) { return "", errors.New("cost too high") }
			},
			wantMsg: "failed to hash password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistrationFixture()
			if tt.setup != nil {
				tt.setup(f)
			}

			_, _, err := f.svc.Register(createTestContext(t), tt.req())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
			if len(f.events.Published) != 0 {
				t.Error("failed registration must not publish")
			}
		})
	}
}

func TestRegistrationServiceImpl_Register_PublishFailureIsNotFatal(t *testing.T) {
	f := newRegistrationFixture()
	f.events.PublishFunc = func(context.Context, string, any) error { return errors.New("broker down") }

	if _, _, err := f.svc.Register(createTestContext(t), validRegistration()); err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
}

func TestRegistrationServiceImpl_Approve(t *testing.T) {
	tests := []struct {
		name     string
		profile  domain.RoleProfile
		smsErr   error
		wantSent []string
	}{
		{
			name:     "with phone sends SMS",
			profile:  domain.RoleProfile{ID: 3, PrincipalID: 7, Kind: domain.KindDriver, Aprovado: true, Phone: "+5511988887777"},
			wantSent: []string{"+5511988887777"},
		},
		{
			name:    "without phone sends nothing",
			profile: domain.RoleProfile{ID: 3, PrincipalID: 7, Kind: domain.KindDriver, Aprovado: true},
		},
		{
			name:     "SMS failure does not fail approval",
			profile:  domain.RoleProfile{ID: 3, PrincipalID: 7, Kind: domain.KindDriver, Aprovado: true, Phone: "+5511988887777"},
			smsErr:   errors.New("twilio down"),
			wantSent: []string{"+5511988887777"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistrationFixture()
			f.principals.ApproveFunc = func(ctx context.Context, principalID uint) (*domain.RoleProfile, error) {
				p := tt.profile
				return &p, nil
			}
			f.notifier.SendSMSFunc = func(to, message string) error {
				if !strings.Contains(message, "foi aprovado") {
					t.Errorf("unexpected SMS body %q", message)
				}
				return tt.smsErr
			}

			profile, err := f.svc.Approve(createTestContext(t), 7, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !profile.Aprovado {
				t.Error("expected approved profile")
			}
			if len(f.notifier.Sent) != len(tt.wantSent) {
				t.Errorf("expected %d SMS, got %d", len(tt.wantSent), len(f.notifier.Sent))
			}

			if len(f.events.Published) != 1 || f.events.Published[0].RoutingKey != domain.RoutingKeyApproved {
				t.Fatalf("expected one approved event, got %+v", f.events.Published)
			}
			msg := f.events.Published[0].Event.(domain.ApprovedMessage)
			if msg.PrincipalID != 7 || msg.ApprovedBy != 1 || msg.Kind != domain.KindDriver {
				t.Errorf("unexpected message %+v", msg)
			}
			if event := f.audit.Last(domain.PrincipalApprovedEvent); event == nil || event.Metadata["approved_by"] != uint(1) {
				t.Errorf("unexpected audit event %+v", event)
			}
		})
	}
}

func TestRegistrationServiceImpl_Approve_Errors(t *testing.T) {
	for _, sentinel := range []error{domain.ErrPrincipalNotFound, domain.ErrProfileNotFound, domain.ErrAlreadyApproved} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			f := newRegistrationFixture()
			f.principals.ApproveFunc = func(context.Context, uint) (*domain.RoleProfile, error) {
				return nil, sentinel
			}

			_, err := f.svc.Approve(createTestContext(t), 7, 1)
			if !errors.Is(err, sentinel) {
				t.Errorf("expected %v, got %v", sentinel, err)
			}
			if len(f.events.Published) != 0 || len(f.notifier.Sent) != 0 {
				t.Error("failed approval must have no side effects")
			}
		})
	}
}

func TestRegistrationServiceImpl_ListPending(t *testing.T) {
	f := newRegistrationFixture()
	want := []domain.PendingAccount{
		{Profile: domain.RoleProfile{PrincipalID: 2, Kind: domain.KindTransporter}, Email: "a@teste.com"},
		{Profile: domain.RoleProfile{PrincipalID: 3, Kind: domain.KindReseller}, Email: "b@teste.com"},
	}
	f.profiles.ListPendingFunc = func(context.Context) ([]domain.PendingAccount, error) { return want, nil }

	got, err := f.svc.ListPending(createTestContext(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Email != "b@teste.com" {
		t.Errorf("unexpected pending list %+v", got)
	}
}

func TestApprovalMessage(t *testing.T) {
	tests := []struct {
		kind    domain.ProfileKind
		company string
		want    string
	}{
		{
			kind:    domain.KindTireShop,
			company: "Borracharia Central",
			want:    "XBPneus: Borracharia Central (borracharia) foi aprovado. Você já pode acessar o sistema.",
		},
		{
			kind: domain.KindDriver,
			want: "XBPneus: Seu cadastro (motorista) foi aprovado. Você já pode acessar o sistema.",
		},
	}

	for _, tt := range tests {
		if got := ApprovalMessage(tt.kind, tt.company); got != tt.want {
			t.Errorf("ApprovalMessage(%s, %q) = %q, want %q", tt.kind, tt.company, got, tt.want)
		}
	}
}
