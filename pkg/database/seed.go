package database

import (
	"context"
	"fmt"
	"time"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/domain/favorite"
	"roomshare/internal/domain/listing"
	"roomshare/internal/domain/message"
	"roomshare/internal/domain/profile"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SeedConfig struct {
	Users           int
	ListingsPerUser int
	MessagesPerChat int
}

func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Users:           4,
		ListingsPerUser: 2,
		MessagesPerChat: 6,
	}
}

type SeedResult struct {
	Profiles      []profile.Profile
	Listings      []listing.Listing
	Conversations []conversation.Conversation
	Messages      []message.Message
	Favorites     []favorite.Favorite
}

var (
	seedNames  = []string{"Anna de Vries", "Bram Jansen", "Chloe Bakker", "Daan Visser", "Eva Smit", "Finn Mulder"}
	seedCities = []string{"Amsterdam", "Utrecht", "Rotterdam", "Groningen"}
	seedLines  = []string{
		"Hi! Is the room still available?",
		"Yes it is, when would you like to visit?",
		"Would Saturday afternoon work?",
		"Saturday works, see you at 14:00.",
		"Are bills included in the rent?",
		"Everything except electricity.",
	}
)

// Seed writes a small, self-consistent dataset in one transaction: profiles,
// their listings, a conversation per neighbouring pair of users about one of
// the listings, and a few favorites.
func Seed(ctx context.Context, db *gorm.DB, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	if cfg.Users < 2 {
		return nil, fmt.Errorf("seed needs at least 2 users, got %d", cfg.Users)
	}

	result := &SeedResult{}
	now := time.Now().UTC()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < cfg.Users; i++ {
			name := seedNames[i%len(seedNames)]
			email := fmt.Sprintf("user%d@roomshare.dev", i+1)
			p := profile.Profile{
				ID:          uuid.New(),
				FullName:    &name,
				EmailPublic: &email,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("seed profile: %w", err)
			}
			result.Profiles = append(result.Profiles, p)

			for j := 0; j < cfg.ListingsPerUser; j++ {
				l := listing.Listing{
					ID:            uuid.New(),
					UserID:        p.ID,
					Title:         fmt.Sprintf("Room %d in %s", j+1, seedCities[(i+j)%len(seedCities)]),
					Price:         float64(500 + 50*((i+j)%6)),
					Location:      seedCities[(i+j)%len(seedCities)],
					RoomType:      listing.RoomSingle,
					AvailableFrom: now.AddDate(0, 1, 0).Truncate(24 * time.Hour),
					Amenities:     []string{"WiFi", "Kitchen"},
					Images:        []string{},
					IsActive:      true,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := tx.Create(&l).Error; err != nil {
					return fmt.Errorf("seed listing: %w", err)
				}
				result.Listings = append(result.Listings, l)
			}
		}

		if cfg.ListingsPerUser == 0 {
			return nil
		}

		for i := 0; i+1 < len(result.Profiles); i++ {
			seeker := result.Profiles[i]
			owner := result.Profiles[i+1]
			room := result.Listings[(i+1)*cfg.ListingsPerUser]

			conv, msgs, err := seedConversation(tx, seeker.ID, owner.ID, room.ID, cfg.MessagesPerChat, now)
			if err != nil {
				return err
			}
			result.Conversations = append(result.Conversations, conv)
			result.Messages = append(result.Messages, msgs...)

			fav := favorite.Favorite{ID: uuid.New(), UserID: seeker.ID, ListingID: room.ID, CreatedAt: now}
			if err := tx.Create(&fav).Error; err != nil {
				return fmt.Errorf("seed favorite: %w", err)
			}
			result.Favorites = append(result.Favorites, fav)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func seedConversation(tx *gorm.DB, seekerID, ownerID, listingID uuid.UUID, count int, now time.Time) (conversation.Conversation, []message.Message, error) {
	scope := conversation.NewScope(seekerID, ownerID, &listingID)
	conv := conversation.Conversation{
		ID:            uuid.New(),
		Participant1:  scope.Pair.Low,
		Participant2:  scope.Pair.High,
		ListingScope:  scope.ListingKey(),
		ListingID:     scope.ListingID,
		InitiatorID:   seekerID,
		LastMessageAt: now,
		CreatedAt:     now.Add(-time.Hour),
	}

	msgs := make([]message.Message, 0, count)
	for k := 0; k < count; k++ {
		sender, receiver := seekerID, ownerID
		if k%2 == 1 {
			sender, receiver = ownerID, seekerID
		}
		at := now.Add(-time.Hour).Add(time.Duration(k+1) * time.Minute)
		id, err := uuid.NewV7()
		if err != nil {
			return conversation.Conversation{}, nil, err
		}
		msg := message.Message{
			ID:             id,
			ConversationID: conv.ID,
			SenderID:       sender,
			ReceiverID:     receiver,
			Content:        seedLines[k%len(seedLines)],
			CreatedAt:      at,
		}
		// Everything but the last message has been read.
		if k < count-1 {
			msg.IsRead = true
			readAt := at.Add(30 * time.Second)
			msg.ReadAt = &readAt
		}
		msgs = append(msgs, msg)
		conv.LastMessageAt = at
	}

	if err := tx.Create(&conv).Error; err != nil {
		return conversation.Conversation{}, nil, fmt.Errorf("seed conversation: %w", err)
	}
	if len(msgs) > 0 {
		if err := tx.Create(&msgs).Error; err != nil {
			return conversation.Conversation{}, nil, fmt.Errorf("seed messages: %w", err)
		}
	}
	return conv, msgs, nil
}

// TableCounts reports the row count of every table in Models.
func TableCounts(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		var n int64
		if err := db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", stmt.Schema.Table, err)
		}
		counts[stmt.Schema.Table] = n
	}
	return counts, nil
}

// Truncate deletes every row owned by this service, children first.
func Truncate(ctx context.Context, db *gorm.DB) error {
	models := Models()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := len(models) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
