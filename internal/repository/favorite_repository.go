package repository

import (
	"context"

	"roomshare/internal/domain/favorite"
	"roomshare/internal/domain/listing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresFavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &PostgresFavoriteRepository{db: db}
}

func (r *PostgresFavoriteRepository) Create(ctx context.Context, f *favorite.Favorite) error {
	return translate("create favorite", r.db.WithContext(ctx).Create(f).Error)
}

func (r *PostgresFavoriteRepository) CreateIfAbsent(ctx context.Context, f *favorite.Favorite) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "listing_id"}},
			DoNothing: true,
		}).
		Create(f)
	if res.Error != nil {
		return false, translate("create favorite", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFavoriteRepository) Delete(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&favorite.Favorite{})
	if res.Error != nil {
		return false, translate("delete favorite", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFavoriteRepository) Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&favorite.Favorite{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error
	if err != nil {
		return false, translate("check favorite", err)
	}
	return count > 0, nil
}

func (r *PostgresFavoriteRepository) ListListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var favorites []favorite.Favorite
	err := r.db.WithContext(ctx).
		Select("listing_id", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, translate("list favorites", err)
	}
	ids := make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ListingID)
	}
	return ids, nil
}

func (r *PostgresFavoriteRepository) ListListings(ctx context.Context, userID uuid.UUID) ([]listing.Listing, error) {
	var listings []listing.Listing
	err := r.db.WithContext(ctx).
		Model(&listing.Listing{}).
		Select("listings.*").
		Joins("JOIN favorites ON favorites.listing_id = listings.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, translate("list favorite listings", err)
	}
	return listings, nil
}
