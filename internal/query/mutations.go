package query

import "github.com/google/uuid"

// Mutation names a write whose success makes some cached queries stale.
type Mutation string

const (
	MutationSendMessage        Mutation = "send-message"
	MutationMarkRead           Mutation = "mark-read"
	MutationGetOrCreate        Mutation = "get-or-create-conversation"
	MutationToggleFavorite     Mutation = "toggle-favorite"
	MutationAddFavorite        Mutation = "add-favorite"
	MutationRemoveFavorite     Mutation = "remove-favorite"
	// MutationConversationChange is a write observed on the change feed
	// rather than made locally; UserID is the viewer being refreshed.
	MutationConversationChange Mutation = "conversation-change"
)

// Args carries the identifiers a mutation was applied to.
type Args struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	OtherUserID    uuid.UUID
	ListingID      uuid.UUID
}

// Invalidates returns the key prefixes made stale by a successful m.
// Unknown mutations invalidate nothing.
func Invalidates(m Mutation, args Args) []Key {
	switch m {
	case MutationSendMessage:
		return []Key{Messages(args.ConversationID), NewKey(OpConversations)}
	case MutationConversationChange:
		return []Key{Messages(args.ConversationID), Conversations(args.UserID)}
	case MutationMarkRead:
		return []Key{Messages(args.ConversationID), NewKey(OpConversations)}
	case MutationGetOrCreate:
		return []Key{NewKey(OpConversations), HasConversation(args.UserID, args.OtherUserID)}
	case MutationToggleFavorite, MutationAddFavorite, MutationRemoveFavorite:
		return []Key{
			NewKey(OpFavorites),
			NewKey(OpFavoriteListings),
			NewKey(OpFavorite, args.ListingID.String()),
		}
	default:
		return nil
	}
}
