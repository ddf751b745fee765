package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Authentication events
	TokenIssuedEvent  AuditEventType = "TOKEN_ISSUED"
	LoginFailureEvent AuditEventType = "LOGIN_FAILED"
	LoginPendingEvent AuditEventType = "LOGIN_PENDING_APPROVAL"
	LoginLockedEvent  AuditEventType = "LOGIN_LOCKED"
	UserLogoutEvent   AuditEventType = "USER_LOGOUT"

	// Account lifecycle events
	PrincipalRegisteredEvent AuditEventType = "PRINCIPAL_REGISTERED"
	PrincipalApprovedEvent   AuditEventType = "PRINCIPAL_APPROVED"
)

// Routing keys used on the message broker
const (
	RoutingKeyRegistered = "principal.registered"
	RoutingKeyApproved   = "principal.approved"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	UserID    uint                   `json:"user_id"`
	Email     string                 `json:"email,omitempty"`
	Role      Role                   `json:"role,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// AuditLogger writes audit events
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent) error
}

// RegisteredMessage is published when a principal self-registers
type RegisteredMessage struct {
	PrincipalID  uint        `json:"principal_id"`
	Email        string      `json:"email"`
	Kind         ProfileKind `json:"kind"`
	CompanyName  string      `json:"company_name,omitempty"`
	RegisteredAt time.Time   `json:"registered_at"`
}

// ApprovedMessage is published when an administrator approves an account
type ApprovedMessage struct {
	PrincipalID uint        `json:"principal_id"`
	Kind        ProfileKind `json:"kind"`
	ApprovedBy  uint        `json:"approved_by"`
	ApprovedAt  time.Time   `json:"approved_at"`
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType, userID uint) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithRole sets the resolved role
func (e *AuditEvent) WithRole(role Role) *AuditEvent {
	e.Role = role
	return e
}

// WithIP sets the client address
func (e *AuditEvent) WithIP(ip string) *AuditEvent {
	e.IPAddress = ip
	return e
}

// WithSession sets the session id
func (e *AuditEvent) WithSession(sessionID string) *AuditEvent {
	e.SessionID = sessionID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
