package services

import (
	"context"
	"errors"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/domain/profile"
	"roomshare/internal/repository"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
)

// ContactService decides when a listing poster's contact details may be
// shown to a viewer.
type ContactService struct {
	listings      repository.ListingRepository
	profiles      repository.ProfileRepository
	conversations repository.ConversationRepository
	opts          Options
}

func NewContactService(listings repository.ListingRepository, profiles repository.ProfileRepository, conversations repository.ConversationRepository, opts Options) *ContactService {
	return &ContactService{
		listings:      listings,
		profiles:      profiles,
		conversations: conversations,
		opts:          opts.withDefaults(),
	}
}

// ForListing reveals the poster's contact to the poster themself or to a
// viewer who already has a conversation with the poster.
func (s *ContactService) ForListing(ctx context.Context, viewerID, listingID uuid.UUID) (profile.Contact, error) {
	if viewerID == uuid.Nil || listingID == uuid.Nil {
		return profile.Contact{}, roomshare_errors.Invalid("viewer and listing are required")
	}
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return profile.Contact{}, roomshare_errors.Store("get listing", err)
	}

	if l.UserID != viewerID {
		ok, err := s.conversations.ExistsForPair(ctx, conversation.NewPair(viewerID, l.UserID))
		if err != nil {
			return profile.Contact{}, roomshare_errors.Store("check conversation", err)
		}
		if !ok {
			return profile.Contact{}, roomshare_errors.ErrForbidden
		}
	}

	poster, err := s.profiles.GetByID(ctx, l.UserID)
	if errors.Is(err, roomshare_errors.ErrNotFound) {
		return profile.Contact{UserID: l.UserID}, nil
	}
	if err != nil {
		return profile.Contact{}, roomshare_errors.Store("get profile", err)
	}
	return poster.Contact(), nil
}

// ListingOwner returns the poster of a listing.
func (s *ContactService) ListingOwner(ctx context.Context, listingID uuid.UUID) (uuid.UUID, error) {
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return uuid.Nil, roomshare_errors.Store("get listing", err)
	}
	return l.UserID, nil
}
