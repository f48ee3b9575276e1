package httpdto

import (
	"time"

	"roomshare/internal/domain/listing"
	"roomshare/internal/domain/profile"

	"github.com/google/uuid"
)

type ToggleFavoriteRequest struct {
	// CurrentState is what the client believes the state is. Advisory only.
	CurrentState bool `json:"current_state"`
}

type FavoriteStateResponse struct {
	ListingID  string `json:"listing_id"`
	IsFavorite bool   `json:"is_favorite"`
}

type FavoriteIDsResponse struct {
	ListingIDs []string `json:"listing_ids"`
}

type ListingResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Price          float64    `json:"price"`
	Location       string     `json:"location"`
	Address        *string    `json:"address,omitempty"`
	RoomType       string     `json:"room_type"`
	AvailableFrom  time.Time  `json:"available_from"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
	Amenities      []string   `json:"amenities"`
	Images         []string   `json:"images"`
	PetsAllowed    bool       `json:"pets_allowed"`
	SmokingAllowed bool       `json:"smoking_allowed"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ContactResponse struct {
	UserID      string  `json:"user_id"`
	FullName    *string `json:"full_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Whatsapp    *string `json:"whatsapp,omitempty"`
	EmailPublic *string `json:"email_public,omitempty"`
}

func FromFavoriteIDs(ids []uuid.UUID) FavoriteIDsResponse {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return FavoriteIDsResponse{ListingIDs: out}
}

func FromListing(l listing.Listing) ListingResponse {
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingResponse{
		ID:             l.ID.String(),
		UserID:         l.UserID.String(),
		Title:          l.Title,
		Description:    l.Description,
		Price:          l.Price,
		Location:       l.Location,
		Address:        l.Address,
		RoomType:       l.RoomType,
		AvailableFrom:  l.AvailableFrom,
		AvailableUntil: l.AvailableUntil,
		Amenities:      amenities,
		Images:         images,
		PetsAllowed:    l.PetsAllowed,
		SmokingAllowed: l.SmokingAllowed,
		IsActive:       l.IsActive,
		CreatedAt:      l.CreatedAt,
	}
}

func FromListingSlice(items []listing.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, FromListing(l))
	}
	return out
}

func FromContact(c profile.Contact) ContactResponse {
	return ContactResponse{
		UserID:      c.UserID.String(),
		FullName:    c.FullName,
		Phone:       c.Phone,
		Whatsapp:    c.Whatsapp,
		EmailPublic: c.EmailPublic,
	}
}
