package domain

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("account awaiting administrator approval")
	ErrAccountLocked      = errors.New("account locked: too many login attempts")
)

// Reasons behind a credential failure. They never reach the caller; an
// AuthFailure wraps them so logs can tell them apart.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordMismatch   = errors.New("password mismatch")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrProfileNotApproved = errors.New("role profile not approved")
)

// Registration and approval errors
var (
	ErrPrincipalAlreadyExists = errors.New("principal already exists")
	ErrPrincipalNotFound      = errors.New("principal not found")
	ErrProfileNotFound        = errors.New("role profile not found")
	ErrAlreadyApproved        = errors.New("account already approved")
	ErrInvalidProfileKind     = errors.New("invalid profile kind")
)

// Policy errors
var ErrUnknownRole = errors.New("unknown role")

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// AuthFailure is returned by credential backends. It matches
// ErrInvalidCredentials with errors.Is and unwraps to the internal reason.
type AuthFailure struct {
	Reason error
}

// NewAuthFailure wraps reason into a uniform credential failure
func NewAuthFailure(reason error) *AuthFailure {
	return &AuthFailure{Reason: reason}
}

func (f *AuthFailure) Error() string {
	if f.Reason == nil {
		return ErrInvalidCredentials.Error()
	}
	return ErrInvalidCredentials.Error() + ": " + f.Reason.Error()
}

// Is makes every AuthFailure equal to ErrInvalidCredentials
func (f *AuthFailure) Is(target error) bool {
	return target == ErrInvalidCredentials
}

func (f *AuthFailure) Unwrap() error {
	return f.Reason
}

// FailureReason extracts the internal reason of a credential failure, or
// returns err unchanged when it is not one.
func FailureReason(err error) error {
	var f *AuthFailure
	if errors.As(err, &f) && f.Reason != nil {
		return f.Reason
	}
	return err
}
