package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/xbpneus/authgate/domain"
)

// ProfileRepositoryImpl implements domain.ProfileRepository using GORM
type ProfileRepositoryImpl struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) domain.ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

// ProfilesOf implements domain.ProfileRepository
func (r *ProfileRepositoryImpl) ProfilesOf(ctx context.Context, principalID uint) ([]domain.RoleProfile, error) {
	var rows []DBRoleProfile
	if err := r.db.WithContext(ctx).Where("principal_id = ?", principalID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	profiles := make([]domain.RoleProfile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, *profileToDomain(&rows[i]))
	}
	return profiles, nil
}

type pendingRow struct {
	DBRoleProfile `gorm:"embedded"`
	Email         string
}

// ListPending implements domain.ProfileRepository, oldest registration first
func (r *ProfileRepositoryImpl) ListPending(ctx context.Context) ([]domain.PendingAccount, error) {
	var rows []pendingRow
	err := r.db.WithContext(ctx).
		Table("role_profiles").
		Select("role_profiles.*, users.email AS email").
		Joins("JOIN users ON users.id = role_profiles.principal_id AND users.deleted_at IS NULL").
		Where("role_profiles.aprovado = ?", false).
		Order("role_profiles.created_at, role_profiles.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.PendingAccount, 0, len(rows))
	for i := range rows {
		out = append(out, domain.PendingAccount{
			Profile: *profileToDomain(&rows[i].DBRoleProfile),
			Email:   rows[i].Email,
		})
	}
	return out, nil
}
