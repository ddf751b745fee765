package auth

import (
	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// CasbinService holds the route enforcer backed by the casbin_rule table
type CasbinService struct{ E *casbin.Enforcer }

func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	E, err := casbin.NewEnforcer(modelPath, adp)
	if err != nil {
		return nil, err
	}
	if err := E.LoadPolicy(); err != nil {
		return nil, err
	}
	return &CasbinService{E}, nil
}

// RoleSubject is the casbin subject used for a role claim
func RoleSubject(role string) string {
	return "role_" + role
}

// SeedPolicies adds any missing default rules. The adapter persists each
// added rule. Every role may read /me and log out; admin owns /admin/*.
func (s *CasbinService) SeedPolicies(roles []string) error {
	rules := [][]string{
		{RoleSubject("admin"), "/admin/*", "(GET)|(POST)|(PUT)|(DELETE)"},
	}
	for _, r := range roles {
		rules = append(rules,
			[]string{RoleSubject(r), "/me", "GET"},
			[]string{RoleSubject(r), "/auth/logout", "POST"},
		)
	}
	for _, rule := range rules {
		if ok, _ := s.E.HasPolicy(rule[0], rule[1], rule[2]); ok {
			continue
		}
		if _, err := s.E.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
			return err
		}
	}
	return nil
}
