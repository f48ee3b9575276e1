package repository

import (
	"context"

	"roomshare/internal/domain/listing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &PostgresListingRepository{db: db}
}

func (r *PostgresListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	l.Amenities = listing.NormalizeAmenities(l.Amenities)
	return translate("create listing", r.db.WithContext(ctx).Create(l).Error)
}

func (r *PostgresListingRepository) GetByID(ctx context.Context, id uuid.UUID) (listing.Listing, error) {
	var l listing.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return listing.Listing{}, translate("get listing", err)
	}
	return l, nil
}

func (r *PostgresListingRepository) GetTitle(ctx context.Context, id uuid.UUID) (string, error) {
	var l listing.Listing
	err := r.db.WithContext(ctx).
		Select("id", "title").
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		return "", translate("get listing title", err)
	}
	return l.Title, nil
}
