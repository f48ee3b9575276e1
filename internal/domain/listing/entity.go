package listing

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoomSingle    = "single"
	RoomShared    = "shared"
	RoomStudio    = "studio"
	RoomApartment = "apartment"
)

// Listing represents the listings table. Only the fields the messaging and
// favorites core reads are interpreted here.
type Listing struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"size:200;not null"`
	Description     *string
	Price           float64 `gorm:"not null"`
	Location        string  `gorm:"size:200;not null"`
	Address         *string `gorm:"size:300"`
	RoomType        string  `gorm:"size:20;not null"`
	AvailableFrom   time.Time
	AvailableUntil  *time.Time
	Amenities       []string `gorm:"serializer:json"`
	Images          []string `gorm:"serializer:json"`
	HouseRules      *string
	PreferredGender *string `gorm:"size:10"`
	PetsAllowed     bool
	SmokingAllowed  bool
	IsActive        bool `gorm:"not null;default:true;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Listing) TableName() string {
	return "listings"
}

// NormalizeAmenities trims, de-duplicates and sorts the amenity set so two
// listings with the same amenities compare equal.
func NormalizeAmenities(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
