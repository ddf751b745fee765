package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xbpneus/authgate/domain"
)

// PrincipalRepositoryImpl implements domain.PrincipalRepository using GORM
type PrincipalRepositoryImpl struct {
	db *gorm.DB
}

// DBPrincipal represents the database model for Principal (with GORM tags)
type DBPrincipal struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:254;not null"`
	PasswordHash string `gorm:"column:password;not null"`
	IsActive     bool   `gorm:"index"`
	IsStaff      bool
	IsSuperuser  bool
	LastLogin    *time.Time
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt  `gorm:"index"`
	Profiles     []DBRoleProfile `gorm:"foreignKey:PrincipalID"`
}

// TableName returns the table name for GORM
func (DBPrincipal) TableName() string {
	return "users"
}

// DBRoleProfile is the role-specific extension row. A principal holds at
// most one profile of each kind.
type DBRoleProfile struct {
	ID          uint   `gorm:"primaryKey"`
	PrincipalID uint   `gorm:"not null;uniqueIndex:idx_profile_principal_kind"`
	Kind        string `gorm:"size:32;not null;uniqueIndex:idx_profile_principal_kind"`
	Aprovado    bool   `gorm:"index"`
	CompanyName string `gorm:"size:255"`
	TaxID       string `gorm:"size:32"`
	Phone       string `gorm:"size:32"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (DBRoleProfile) TableName() string {
	return "role_profiles"
}

// NewPrincipalRepository creates a new principal repository
func NewPrincipalRepository(db *gorm.DB) domain.PrincipalRepository {
	return &PrincipalRepositoryImpl{db: db}
}

// FindByEmail implements domain.PrincipalRepository
func (r *PrincipalRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	var dbPrincipal DBPrincipal
	err := r.db.WithContext(ctx).Where("email = ?", domain.NormalizeEmail(email)).First(&dbPrincipal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return principalToDomain(&dbPrincipal), nil
}

// FindByID implements domain.PrincipalRepository
func (r *PrincipalRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Principal, error) {
	var dbPrincipal DBPrincipal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbPrincipal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, err
	}
	return principalToDomain(&dbPrincipal), nil
}

// Register implements domain.PrincipalRepository
func (r *PrincipalRepositoryImpl) Register(ctx context.Context, principal *domain.Principal, profile *domain.RoleProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		email := domain.NormalizeEmail(principal.Email)

		var count int64
		if err := tx.Unscoped().Model(&DBPrincipal{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrPrincipalAlreadyExists
		}

		// A concurrent registration can still win between the count and the
		// insert; the unique index on users.email settles it.
		dbPrincipal := principalToDB(principal)
		dbPrincipal.Email = email
		if err := tx.Create(dbPrincipal).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrPrincipalAlreadyExists
			}
			return err
		}

		if profile != nil {
			dbProfile := profileToDB(profile)
			dbProfile.PrincipalID = dbPrincipal.ID
			if err := tx.Create(dbProfile).Error; err != nil {
				return err
			}
			profile.ID = dbProfile.ID
			profile.PrincipalID = dbPrincipal.ID
			profile.CreatedAt = dbProfile.CreatedAt
			profile.UpdatedAt = dbProfile.UpdatedAt
		}

		principal.ID = dbPrincipal.ID
		principal.Email = email
		principal.CreatedAt = dbPrincipal.CreatedAt
		principal.UpdatedAt = dbPrincipal.UpdatedAt
		return nil
	})
}

// Approve implements domain.PrincipalRepository. Every profile of the
// principal becomes approved and the principal is activated.
func (r *PrincipalRepositoryImpl) Approve(ctx context.Context, principalID uint) (*domain.RoleProfile, error) {
	var approved *domain.RoleProfile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbPrincipal DBPrincipal
		if err := tx.Preload("Profiles").Where("id = ?", principalID).First(&dbPrincipal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPrincipalNotFound
			}
			return err
		}
		if len(dbPrincipal.Profiles) == 0 {
			return domain.ErrProfileNotFound
		}

		profiles := make([]domain.RoleProfile, 0, len(dbPrincipal.Profiles))
		pending := false
		for i := range dbPrincipal.Profiles {
			p := profileToDomain(&dbPrincipal.Profiles[i])
			pending = pending || !p.Aprovado
			p.Aprovado = true
			profiles = append(profiles, *p)
		}
		if !pending {
			return domain.ErrAlreadyApproved
		}

		if err := tx.Model(&DBRoleProfile{}).
			Where("principal_id = ? AND aprovado = ?", principalID, false).
			Update("aprovado", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&DBPrincipal{}).
			Where("id = ?", principalID).
			Update("is_active", true).Error; err != nil {
			return err
		}

		approved = domain.PrimaryProfile(profiles)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// TouchLastLogin implements domain.PrincipalRepository
func (r *PrincipalRepositoryImpl) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&DBPrincipal{}).Where("id = ?", id).Update("last_login", at).Error
}

// principalToDB converts domain principal to database principal
func principalToDB(p *domain.Principal) *DBPrincipal {
	return &DBPrincipal{
		ID:           p.ID,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		IsActive:     p.IsActive,
		IsStaff:      p.IsStaff,
		IsSuperuser:  p.IsSuperuser,
		LastLogin:    p.LastLogin,
	}
}

// principalToDomain converts database principal to domain principal
func principalToDomain(p *DBPrincipal) *domain.Principal {
	return &domain.Principal{
		ID:           p.ID,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		IsActive:     p.IsActive,
		IsStaff:      p.IsStaff,
		IsSuperuser:  p.IsSuperuser,
		LastLogin:    p.LastLogin,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func profileToDB(p *domain.RoleProfile) *DBRoleProfile {
	return &DBRoleProfile{
		ID:          p.ID,
		PrincipalID: p.PrincipalID,
		Kind:        string(p.Kind),
		Aprovado:    p.Aprovado,
		CompanyName: p.CompanyName,
		TaxID:       p.TaxID,
		Phone:       p.Phone,
	}
}

func profileToDomain(p *DBRoleProfile) *domain.RoleProfile {
	return &domain.RoleProfile{
		ID:          p.ID,
		PrincipalID: p.PrincipalID,
		Kind:        domain.ProfileKind(p.Kind),
		Aprovado:    p.Aprovado,
		CompanyName: p.CompanyName,
		TaxID:       p.TaxID,
		Phone:       p.Phone,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
