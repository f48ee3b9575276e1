package favorite

import (
	"time"

	"github.com/google/uuid"
)

// Favorite represents the favorites table, a pure user/listing join.
type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_listing"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_listing;index"`
	CreatedAt time.Time
}

func (Favorite) TableName() string {
	return "favorites"
}
