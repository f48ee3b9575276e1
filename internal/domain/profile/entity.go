package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents the profiles table. One row per user; the id is the
// user id issued by the identity provider.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName    *string   `gorm:"size:100"`
	AvatarURL   *string
	Bio         *string `gorm:"size:1000"`
	Phone       *string `gorm:"size:20"`
	Whatsapp    *string `gorm:"size:20"`
	EmailPublic *string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Contact is the subset of a profile revealed to a listing viewer once a
// conversation with the poster exists.
type Contact struct {
	UserID      uuid.UUID
	FullName    *string
	Phone       *string
	Whatsapp    *string
	EmailPublic *string
}

func (p Profile) Contact() Contact {
	return Contact{
		UserID:      p.ID,
		FullName:    p.FullName,
		Phone:       p.Phone,
		Whatsapp:    p.Whatsapp,
		EmailPublic: p.EmailPublic,
	}
}

func (Profile) TableName() string {
	return "profiles"
}
