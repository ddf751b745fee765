package domain

import (
	"strings"
	"time"
)

// Principal is the single login identity shared by every kind of account
type Principal struct {
	ID           uint
	Email        string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the form emails are stored, looked up and keyed in
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileKind identifies which business role a RoleProfile represents.
// Each kind's value is also the role claim it resolves to.
type ProfileKind string

const (
	KindTransporter    ProfileKind = "transportador"
	KindDriver         ProfileKind = "motorista"
	KindExternalDriver ProfileKind = "motorista_externo"
	KindTireShop       ProfileKind = "borracharia"
	KindReseller       ProfileKind = "revenda"
	KindRetreader      ProfileKind = "recapagem"
)

// ProfileKinds lists every profile kind in role-resolution priority order
var ProfileKinds = []ProfileKind{
	KindExternalDriver,
	KindDriver,
	KindTireShop,
	KindReseller,
	KindRetreader,
	KindTransporter,
}

// Valid reports whether k is one of the six known kinds
func (k ProfileKind) Valid() bool {
	for _, known := range ProfileKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ApprovalState is the lifecycle state of a RoleProfile
type ApprovalState string

const (
	StatePending  ApprovalState = "PENDING"
	StateApproved ApprovalState = "APPROVED"
)

// RoleProfile is the role-specific extension record attached to a Principal
type RoleProfile struct {
	ID          uint
	PrincipalID uint
	Kind        ProfileKind
	Aprovado    bool
	CompanyName string
	TaxID       string
	Phone       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// State derives the approval state from the aprovado flag
func (p RoleProfile) State() ApprovalState {
	if p.Aprovado {
		return StateApproved
	}
	return StatePending
}

// PendingAccount pairs an unapproved profile with its principal's email
type PendingAccount struct {
	Profile RoleProfile
	Email   string
}

// LoginRequest carries the credentials submitted to the token endpoint
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// RegistrationRequest carries a self-registration
type RegistrationRequest struct {
	Email       string
	Password    string
	Kind        ProfileKind
	CompanyName string
	TaxID       string
	Phone       string
}

// AuthResult is the session token pair issued on a successful login
type AuthResult struct {
	Principal    *Principal
	Role         Role
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64
}

// Session represents a server-side login session backing a token pair
type Session struct {
	ID        string
	UserID    uint
	Role      Role
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity is the verified (principal, role) pair attached to authenticated requests
type Identity struct {
	PrincipalID uint
	Role        Role
	SessionID   string
}
