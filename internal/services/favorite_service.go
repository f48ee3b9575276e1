package services

import (
	"context"

	"roomshare/internal/domain/favorite"
	"roomshare/internal/domain/listing"
	"roomshare/internal/repository"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// toggleAttempts bounds the delete/insert flip when other writers keep
// racing on the same pair.
const toggleAttempts = 3

type FavoriteService struct {
	favorites repository.FavoriteRepository
	listings  repository.ListingRepository
	opts      Options
}

func NewFavoriteService(favorites repository.FavoriteRepository, listings repository.ListingRepository, opts Options) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		listings:  listings,
		opts:      opts.withDefaults(),
	}
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	if err := validatePair(userID, listingID); err != nil {
		return false, err
	}
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	ok, err := s.favorites.Exists(ctx, userID, listingID)
	if err != nil {
		return false, roomshare_errors.Store("check favorite", err)
	}
	return ok, nil
}

// Add favorites the listing. Adding twice is not an error.
func (s *FavoriteService) Add(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := validatePair(userID, listingID); err != nil {
		return err
	}
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	if err := s.requireListing(ctx, listingID); err != nil {
		return err
	}
	_, err := s.favorites.CreateIfAbsent(ctx, s.newFavorite(userID, listingID))
	return roomshare_errors.Store("add favorite", err)
}

// Remove unfavorites the listing. Removing an absent favorite is not an error.
func (s *FavoriteService) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := validatePair(userID, listingID); err != nil {
		return err
	}
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	_, err := s.favorites.Delete(ctx, userID, listingID)
	return roomshare_errors.Store("remove favorite", err)
}

// Toggle flips the stored state and returns the new one. believed is what
// the caller last saw; the store decides, so a stale belief still produces
// a flip of the real state.
func (s *FavoriteService) Toggle(ctx context.Context, userID, listingID uuid.UUID, believed bool) (bool, error) {
	if err := validatePair(userID, listingID); err != nil {
		return false, err
	}
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	if err := s.requireListing(ctx, listingID); err != nil {
		return false, err
	}

	for attempt := 0; attempt < toggleAttempts; attempt++ {
		removed, err := s.favorites.Delete(ctx, userID, listingID)
		if err != nil {
			return false, roomshare_errors.Store("toggle favorite", err)
		}
		if removed {
			s.noteStale(ctx, userID, listingID, believed, false)
			return false, nil
		}

		inserted, err := s.favorites.CreateIfAbsent(ctx, s.newFavorite(userID, listingID))
		if err != nil {
			return false, roomshare_errors.Store("toggle favorite", err)
		}
		if inserted {
			s.noteStale(ctx, userID, listingID, believed, true)
			return true, nil
		}
		// A concurrent writer inserted between our delete and insert.
	}
	return false, roomshare_errors.ErrConflict
}

func (s *FavoriteService) ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, roomshare_errors.Invalid("user id is required")
	}
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	ids, err := s.favorites.ListListingIDs(ctx, userID)
	if err != nil {
		return nil, roomshare_errors.Store("list favorites", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (s *FavoriteService) ListListings(ctx context.Context, userID uuid.UUID) ([]listing.Listing, error) {
	if userID == uuid.Nil {
		return nil, roomshare_errors.Invalid("user id is required")
	}
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	listings, err := s.favorites.ListListings(ctx, userID)
	if err != nil {
		return nil, roomshare_errors.Store("list favorite listings", err)
	}
	if listings == nil {
		listings = []listing.Listing{}
	}
	return listings, nil
}

func (s *FavoriteService) newFavorite(userID, listingID uuid.UUID) *favorite.Favorite {
	return &favorite.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: s.opts.Now(),
	}
}

func (s *FavoriteService) requireListing(ctx context.Context, listingID uuid.UUID) error {
	if _, err := s.listings.GetTitle(ctx, listingID); err != nil {
		return roomshare_errors.Store("get listing", err)
	}
	return nil
}

// noteStale logs toggles whose caller acted on an outdated view.
func (s *FavoriteService) noteStale(ctx context.Context, userID, listingID uuid.UUID, believed, now bool) {
	if believed != now {
		return
	}
	s.opts.Logger.InfoCtx(ctx, "stale favorite toggle",
		zap.String("user_id", userID.String()),
		zap.String("listing_id", listingID.String()),
		zap.Bool("believed", believed))
}

func validatePair(userID, listingID uuid.UUID) error {
	if userID == uuid.Nil || listingID == uuid.Nil {
		return roomshare_errors.Invalid("user and listing are required")
	}
	return nil
}
