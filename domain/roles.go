package domain

import "context"

// Role is the value of the user_role claim
type Role string

const (
	RoleTransporter    Role = "transportador"
	RoleDriver         Role = "motorista"
	RoleExternalDriver Role = "motorista_externo"
	RoleTireShop       Role = "borracharia"
	RoleReseller       Role = "revenda"
	RoleRetreader      Role = "recapagem"
	RoleAdmin          Role = "admin"
)

// Roles lists every role a token can carry
var Roles = []Role{
	RoleTransporter,
	RoleDriver,
	RoleExternalDriver,
	RoleTireShop,
	RoleReseller,
	RoleRetreader,
	RoleAdmin,
}

// Valid reports whether r is a role a token can carry
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// PrimaryProfile returns the profile that decides the principal's role,
// walking ProfileKinds in priority order. Nil when no profile is attached.
func PrimaryProfile(profiles []RoleProfile) *RoleProfile {
	for _, kind := range ProfileKinds {
		for i := range profiles {
			if profiles[i].Kind == kind {
				return &profiles[i]
			}
		}
	}
	return nil
}

// ResolveRole computes the role claim for a principal. The first matching
// profile kind wins, no profile means transportador, and staff or superuser
// always ends as admin regardless of profiles.
func ResolveRole(p *Principal, profiles []RoleProfile) Role {
	role := RoleTransporter
	for _, kind := range ProfileKinds[:len(ProfileKinds)-1] {
		if hasKind(profiles, kind) {
			role = Role(kind)
			break
		}
	}

	// Evaluated on its own, not shared with ApprovalPending.
	if p.IsStaff || p.IsSuperuser {
		role = RoleAdmin
	}
	return role
}

// ApprovalPending reports whether a non-admin principal has an attached
// profile that an administrator has not approved yet.
func ApprovalPending(p *Principal, profiles []RoleProfile) bool {
	if p.IsSuperuser || p.IsStaff {
		return false
	}
	primary := PrimaryProfile(profiles)
	return primary != nil && !primary.Aprovado
}

func hasKind(profiles []RoleProfile, kind ProfileKind) bool {
	for _, p := range profiles {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

type identityKey struct{}

// WithIdentity attaches the verified identity to ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by the authentication middleware
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
