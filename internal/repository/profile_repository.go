package repository

import (
	"context"

	"roomshare/internal/domain/profile"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	return translate("create profile", r.db.WithContext(ctx).Create(p).Error)
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	var p profile.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return profile.Profile{}, translate("get profile", err)
	}
	return p, nil
}

func (r *PostgresProfileRepository) Update(ctx context.Context, p profile.Profile) error {
	res := r.db.WithContext(ctx).Save(&p)
	if res.Error != nil {
		return translate("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return roomshare_errors.ErrNotFound
	}
	return nil
}
