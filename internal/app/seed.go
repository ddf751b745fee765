package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xbpneus/authgate/domain"
)

// SeedFile is the YAML document read by cmd/seed
type SeedFile struct {
	Principals []SeedPrincipal `yaml:"principals"`
}

type SeedPrincipal struct {
	Email     string       `yaml:"email"`
	Password  string       `yaml:"password"`
	Active    bool         `yaml:"active"`
	Staff     bool         `yaml:"staff"`
	Superuser bool         `yaml:"superuser"`
	Profile   *SeedProfile `yaml:"profile"`
}

type SeedProfile struct {
	Kind        string `yaml:"kind"`
	Aprovado    bool   `yaml:"aprovado"`
	CompanyName string `yaml:"company_name"`
	TaxID       string `yaml:"tax_id"`
	Phone       string `yaml:"phone"`
}

// SeedResult counts what Seed did
type SeedResult struct {
	Created int
	Skipped int
}

func LoadSeedFile(path string) (*SeedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f SeedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Seed registers every principal of f. Existing emails are skipped, so the
// file can be loaded repeatedly.
func Seed(ctx context.Context, principals domain.PrincipalRepository, passwords domain.PasswordService, f *SeedFile) (SeedResult, error) {
	var res SeedResult
	for i, sp := range f.Principals {
		if sp.Email == "" || sp.Password == "" {
			return res, fmt.Errorf("principal %d: email and password are required", i)
		}

		var profile *domain.RoleProfile
		if sp.Profile != nil {
			kind := domain.ProfileKind(sp.Profile.Kind)
			if !kind.Valid() {
				return res, fmt.Errorf("principal %s: %w: %q", sp.Email, domain.ErrInvalidProfileKind, sp.Profile.Kind)
			}
			profile = &domain.RoleProfile{
				Kind:        kind,
				Aprovado:    sp.Profile.Aprovado,
				CompanyName: sp.Profile.CompanyName,
				TaxID:       sp.Profile.TaxID,
				Phone:       sp.Profile.Phone,
			}
		}

		hash, err := passwords.Hash(sp.Password)
		if err != nil {
			return res, fmt.Errorf("principal %s: %w", sp.Email, err)
		}
		p := &domain.Principal{
			Email:        sp.Email,
			PasswordHash: hash,
			IsActive:     sp.Active,
			IsStaff:      sp.Staff,
			IsSuperuser:  sp.Superuser,
		}

		err = principals.Register(ctx, p, profile)
		switch {
		case errors.Is(err, domain.ErrPrincipalAlreadyExists):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("principal %s: %w", sp.Email, err)
		default:
			res.Created++
		}
	}
	return res, nil
}
