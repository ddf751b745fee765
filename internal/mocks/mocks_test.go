package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xbpneus/authgate/domain"
	"github.com/xbpneus/authgate/internal/mocks"
)

func TestMockTokenService_RoundTrip(t *testing.T) {
	svc := mocks.NewMockTokenService()

	access, _ := svc.GenerateAccessToken(3, domain.RoleTireShop, "sess")
	claims, err := svc.ValidateAccessToken(access)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 3 || claims.Role != domain.RoleTireShop || claims.SessionID != "sess" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := svc.ValidateRefreshToken(access); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("access token must not validate as refresh, got %v", err)
	}
}

func TestMockLockoutService_Counts(t *testing.T) {
	l := mocks.NewMockLockoutService(2)
	ctx := context.Background()

	if locked, _ := l.RegisterFailure(ctx, "k"); locked {
		t.Fatal("first failure should not lock")
	}
	if locked, _ := l.RegisterFailure(ctx, "k"); !locked {
		t.Fatal("second failure should lock")
	}
	if locked, _, _ := l.IsLocked(ctx, "k"); !locked {
		t.Error("expected key to be locked")
	}
	_ = l.Reset(ctx, "k")
	if l.Failures("k") != 0 || l.Resets("k") != 1 {
		t.Error("expected reset to clear failures")
	}
}

func TestMockCasbinEnforcer_Matching(t *testing.T) {
	e := mocks.NewMockCasbinEnforcer()
	e.SetPolicies([][]string{
		{"role_admin", "/admin/*", "(GET)|(POST)"},
		{"role_motorista", "/me", "GET"},
	})

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{"role_admin", "/admin/approvals", "GET", true},
		{"role_admin", "/admin/approvals", "DELETE", false},
		{"role_motorista", "/me", "GET", true},
		{"role_motorista", "/admin/approvals", "GET", false},
	}
	for _, tt := range tests {
		if got, _ := e.Enforce(tt.sub, tt.obj, tt.act); got != tt.want {
			t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.sub, tt.obj, tt.act, got, tt.want)
		}
	}
}
