package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xbpneus/authgate/domain"
)

// RegistrationServiceImpl implements domain.RegistrationService
type RegistrationServiceImpl struct {
	principals domain.PrincipalRepository
	profiles   domain.ProfileRepository
	passwords  domain.PasswordService
	events     domain.EventPublisher
	notifier   domain.NotificationService
	audit      domain.AuditLogger
	now        func() time.Time
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	principals domain.PrincipalRepository,
	profiles domain.ProfileRepository,
	passwords domain.PasswordService,
	events domain.EventPublisher,
	notifier domain.NotificationService,
	audit domain.AuditLogger,
) *RegistrationServiceImpl {
	return &RegistrationServiceImpl{
		principals: principals,
		profiles:   profiles,
		passwords:  passwords,
		events:     events,
		notifier:   notifier,
		audit:      audit,
		now:        time.Now,
	}
}

// Register implements domain.RegistrationService. The account starts
// PENDING: inactive principal, unapproved profile.
func (s *RegistrationServiceImpl) Register(ctx context.Context, req domain.RegistrationRequest) (*domain.Principal, *domain.RoleProfile, error) {
	if !req.Kind.Valid() {
		return nil, nil, domain.ErrInvalidProfileKind
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	principal := &domain.Principal{
		Email:        domain.NormalizeEmail(req.Email),
		PasswordHash: hash,
		IsActive:     false,
	}
	profile := &domain.RoleProfile{
		Kind:        req.Kind,
		Aprovado:    false,
		CompanyName: req.CompanyName,
		TaxID:       req.TaxID,
		Phone:       req.Phone,
	}
	if err := s.principals.Register(ctx, principal, profile); err != nil {
		return nil, nil, fmt.Errorf("failed to register principal: %w", err)
	}

	s.publish(ctx, domain.RoutingKeyRegistered, domain.RegisteredMessage{
		PrincipalID:  principal.ID,
		Email:        principal.Email,
		Kind:         profile.Kind,
		CompanyName:  profile.CompanyName,
		RegisteredAt: s.now().UTC(),
	})
	s.logAudit(ctx, domain.NewAuditEvent(domain.PrincipalRegisteredEvent, principal.ID).
		WithEmail(principal.Email).
		WithMetadata("kind", string(profile.Kind)))

	return principal, profile, nil
}

// Approve implements domain.RegistrationService
func (s *RegistrationServiceImpl) Approve(ctx context.Context, principalID, approverID uint) (*domain.RoleProfile, error) {
	profile, err := s.principals.Approve(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve principal %d: %w", principalID, err)
	}

	s.publish(ctx, domain.RoutingKeyApproved, domain.ApprovedMessage{
		PrincipalID: principalID,
		Kind:        profile.Kind,
		ApprovedBy:  approverID,
		ApprovedAt:  s.now().UTC(),
	})
	if profile.Phone != "" {
		if err := s.notifier.SendSMS(profile.Phone, ApprovalMessage(profile.Kind, profile.CompanyName)); err != nil {
			log.Printf("EVENT: approval_sms_failed user_id=%d err=%v", principalID, err)
		}
	}
	s.logAudit(ctx, domain.NewAuditEvent(domain.PrincipalApprovedEvent, principalID).
		WithRole(domain.Role(profile.Kind)).
		WithMetadata("approved_by", approverID))

	return profile, nil
}

// ListPending implements domain.RegistrationService
func (s *RegistrationServiceImpl) ListPending(ctx context.Context) ([]domain.PendingAccount, error) {
	return s.profiles.ListPending(ctx)
}

// ApprovalMessage is the SMS body sent when an account is approved
func ApprovalMessage(kind domain.ProfileKind, companyName string) string {
	name := companyName
	if name == "" {
		name = "Seu cadastro"
	}
	return fmt.Sprintf("XBPneus: %s (%s) foi aprovado. Você já pode acessar o sistema.", name, kind)
}

func (s *RegistrationServiceImpl) publish(ctx context.Context, routingKey string, event any) {
	if err := s.events.Publish(ctx, routingKey, event); err != nil {
		log.Printf("EVENT: publish_failed routing_key=%s err=%v", routingKey, err)
	}
}

func (s *RegistrationServiceImpl) logAudit(ctx context.Context, event *domain.AuditEvent) {
	if err := s.audit.LogEvent(ctx, event); err != nil {
		log.Printf("EVENT: audit_write_failed type=%s err=%v", event.EventType, err)
	}
}

var _ domain.RegistrationService = (*RegistrationServiceImpl)(nil)
