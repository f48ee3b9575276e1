package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/domain/favorite"
	"roomshare/internal/domain/listing"
	"roomshare/internal/domain/message"
	"roomshare/internal/domain/profile"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *profile.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error)
	Update(ctx context.Context, p profile.Profile) error
}

type ListingRepository interface {
	Create(ctx context.Context, l *listing.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (listing.Listing, error)
	GetTitle(ctx context.Context, id uuid.UUID) (string, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	FindByScope(ctx context.Context, scope conversation.Scope) (conversation.Conversation, error)
	ExistsForPair(ctx context.Context, pair conversation.Pair) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error)
	TouchLastMessageAt(ctx context.Context, conversationID uuid.UUID, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error)
	GetLatest(ctx context.Context, conversationID uuid.UUID) (message.Message, error)
	MarkRead(ctx context.Context, conversationID, receiverID uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, conversationID, receiverID uuid.UUID) (int64, error)
}

type FavoriteRepository interface {
	// Create fails with ErrAlreadyExists when the pair is already present.
	Create(ctx context.Context, f *favorite.Favorite) error
	// CreateIfAbsent reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, f *favorite.Favorite) (bool, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	ListListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListListings(ctx context.Context, userID uuid.UUID) ([]listing.Listing, error)
}
