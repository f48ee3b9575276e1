package services

import (
	"context"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/domain/listing"
	"roomshare/internal/domain/message"
	"roomshare/internal/domain/profile"
	"roomshare/internal/query"

	"github.com/google/uuid"
)

// Marketplace is the entry point used by the transport layer. Reads go
// through the query cache and every successful write invalidates the
// queries it made stale.
type Marketplace struct {
	conversations *ConversationService
	messages      *MessageService
	favorites     *FavoriteService
	contacts      *ContactService
	cache         *query.Cache
}

func NewMarketplace(conversations *ConversationService, messages *MessageService, favorites *FavoriteService, contacts *ContactService, cache *query.Cache) *Marketplace {
	return &Marketplace{
		conversations: conversations,
		messages:      messages,
		favorites:     favorites,
		contacts:      contacts,
		cache:         cache,
	}
}

func (m *Marketplace) Cache() *query.Cache {
	return m.cache
}

func (m *Marketplace) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	return query.Fetch(ctx, m.cache, query.Conversations(userID), func(ctx context.Context) ([]ConversationSummary, error) {
		return m.conversations.ListForUser(ctx, userID)
	})
}

func (m *Marketplace) HasConversation(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	return query.Fetch(ctx, m.cache, query.HasConversation(userID, otherUserID), func(ctx context.Context) (bool, error) {
		return m.conversations.Exists(ctx, userID, otherUserID)
	})
}

func (m *Marketplace) OpenConversation(ctx context.Context, userID, otherUserID uuid.UUID, listingID *uuid.UUID) (conversation.Conversation, bool, error) {
	c, created, err := m.conversations.GetOrCreate(ctx, userID, otherUserID, listingID)
	if err != nil {
		return conversation.Conversation{}, false, err
	}
	m.cache.Apply(ctx, query.MutationGetOrCreate, query.Args{UserID: userID, OtherUserID: otherUserID})
	return c, created, nil
}

// OpenListingConversation starts (or resumes) the conversation with the
// poster of listingID about that listing.
func (m *Marketplace) OpenListingConversation(ctx context.Context, userID, listingID uuid.UUID) (conversation.Conversation, bool, error) {
	ownerID, err := m.contacts.ListingOwner(ctx, listingID)
	if err != nil {
		return conversation.Conversation{}, false, err
	}
	return m.OpenConversation(ctx, userID, ownerID, &listingID)
}

// History checks membership on every call; the cached history itself is
// shared by both participants.
func (m *Marketplace) History(ctx context.Context, conversationID, viewerID uuid.UUID) ([]message.Message, error) {
	if _, err := m.conversations.GetForParticipant(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	return query.Fetch(ctx, m.cache, query.Messages(conversationID), func(ctx context.Context) ([]message.Message, error) {
		return m.messages.History(ctx, conversationID, viewerID)
	})
}

func (m *Marketplace) SendMessage(ctx context.Context, in SendMessageInput) (message.Message, error) {
	msg, err := m.messages.Send(ctx, in)
	if err != nil {
		return message.Message{}, err
	}
	m.cache.Apply(ctx, query.MutationSendMessage, query.Args{ConversationID: msg.ConversationID})
	return msg, nil
}

func (m *Marketplace) MarkRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	n, err := m.messages.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	m.cache.Apply(ctx, query.MutationMarkRead, query.Args{ConversationID: conversationID, UserID: userID})
	return n, nil
}

func (m *Marketplace) IsFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	return query.Fetch(ctx, m.cache, query.Favorite(listingID, userID), func(ctx context.Context) (bool, error) {
		return m.favorites.IsFavorite(ctx, userID, listingID)
	})
}

func (m *Marketplace) FavoriteIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return query.Fetch(ctx, m.cache, query.Favorites(userID), func(ctx context.Context) ([]uuid.UUID, error) {
		return m.favorites.ListIDs(ctx, userID)
	})
}

func (m *Marketplace) FavoriteListings(ctx context.Context, userID uuid.UUID) ([]listing.Listing, error) {
	return query.Fetch(ctx, m.cache, query.FavoriteListings(userID), func(ctx context.Context) ([]listing.Listing, error) {
		return m.favorites.ListListings(ctx, userID)
	})
}

func (m *Marketplace) AddFavorite(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := m.favorites.Add(ctx, userID, listingID); err != nil {
		return err
	}
	m.cache.Apply(ctx, query.MutationAddFavorite, query.Args{UserID: userID, ListingID: listingID})
	return nil
}

func (m *Marketplace) RemoveFavorite(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := m.favorites.Remove(ctx, userID, listingID); err != nil {
		return err
	}
	m.cache.Apply(ctx, query.MutationRemoveFavorite, query.Args{UserID: userID, ListingID: listingID})
	return nil
}

func (m *Marketplace) ToggleFavorite(ctx context.Context, userID, listingID uuid.UUID, believed bool) (bool, error) {
	state, err := m.favorites.Toggle(ctx, userID, listingID, believed)
	if err != nil {
		return false, err
	}
	m.cache.Apply(ctx, query.MutationToggleFavorite, query.Args{UserID: userID, ListingID: listingID})
	return state, nil
}

func (m *Marketplace) ListingContact(ctx context.Context, viewerID, listingID uuid.UUID) (profile.Contact, error) {
	return m.contacts.ForListing(ctx, viewerID, listingID)
}
