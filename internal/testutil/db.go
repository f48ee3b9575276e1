// Package testutil provides an in-memory store and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"roomshare/internal/domain/listing"
	"roomshare/internal/domain/profile"
	"roomshare/pkg/database"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
// A single connection keeps concurrent callers serialized the way a row
// lock would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Clock hands out strictly increasing timestamps, one millisecond apart.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func strPtr(s string) *string { return &s }

// SeedProfile inserts a profile with a display name and contact fields.
func SeedProfile(t testing.TB, db *gorm.DB, name string) profile.Profile {
	t.Helper()
	p := profile.Profile{
		ID:          uuid.New(),
		FullName:    strPtr(name),
		Phone:       strPtr("+31 6 1234 5678"),
		EmailPublic: strPtr(name + "@example.com"),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(context.Background()).Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

// SeedListing inserts an active listing owned by ownerID.
func SeedListing(t testing.TB, db *gorm.DB, ownerID uuid.UUID, title string) listing.Listing {
	t.Helper()
	l := listing.Listing{
		ID:            uuid.New(),
		UserID:        ownerID,
		Title:         title,
		Price:         650,
		Location:      "Utrecht",
		RoomType:      listing.RoomSingle,
		AvailableFrom: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Amenities:     []string{"WiFi", "Kitchen"},
		Images:        []string{},
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(context.Background()).Create(&l).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return l
}
