package query

import (
	"strings"

	"roomshare/internal/domain/conversation"

	"github.com/google/uuid"
)

// Key identifies a cached query as "operation:param:param". A key with fewer
// params is a prefix of every longer key of the same operation.
type Key string

const (
	OpConversations    = "conversations"
	OpHasConversation  = "has-conversation"
	OpMessages         = "messages"
	OpFavorites        = "favorites"
	OpFavoriteListings = "favorite-listings"
	OpFavorite         = "favorite"
)

const keySeparator = ":"

func NewKey(op string, params ...string) Key {
	if len(params) == 0 {
		return Key(op)
	}
	return Key(op + keySeparator + strings.Join(params, keySeparator))
}

// HasPrefix reports whether k is prefix or is nested under it on a param
// boundary, so "messages:1" does not match "messages:12".
func (k Key) HasPrefix(prefix Key) bool {
	s, p := string(k), string(prefix)
	return s == p || strings.HasPrefix(s, p+keySeparator)
}

func (k Key) String() string {
	return string(k)
}

func Conversations(userID uuid.UUID) Key {
	return NewKey(OpConversations, userID.String())
}

func HasConversation(a, b uuid.UUID) Key {
	pair := conversation.NewPair(a, b)
	return NewKey(OpHasConversation, pair.Low.String(), pair.High.String())
}

func Messages(conversationID uuid.UUID) Key {
	return NewKey(OpMessages, conversationID.String())
}

func Favorites(userID uuid.UUID) Key {
	return NewKey(OpFavorites, userID.String())
}

func FavoriteListings(userID uuid.UUID) Key {
	return NewKey(OpFavoriteListings, userID.String())
}

func Favorite(listingID, userID uuid.UUID) Key {
	return NewKey(OpFavorite, listingID.String(), userID.String())
}
