package conversation

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table.
//
// Participant1/Participant2 hold the pair in canonical order (Participant1 is
// the smaller id) and ListingScope is the listing id or "" for a conversation
// that is not about a listing. Together they form the unique scope index, so
// one direction of lookup is enough.
type Conversation struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Participant1  uuid.UUID  `gorm:"column:participant_1;type:uuid;not null;uniqueIndex:idx_conversation_scope,priority:1;index"`
	Participant2  uuid.UUID  `gorm:"column:participant_2;type:uuid;not null;uniqueIndex:idx_conversation_scope,priority:2;index"`
	ListingScope  string     `gorm:"size:36;not null;default:'';uniqueIndex:idx_conversation_scope,priority:3"`
	ListingID     *uuid.UUID `gorm:"type:uuid;index"`
	InitiatorID   uuid.UUID  `gorm:"type:uuid;not null"`
	LastMessageAt time.Time  `gorm:"not null;index"`
	CreatedAt     time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}

// Pair is an unordered participant pair, always held in canonical order.
type Pair struct {
	Low  uuid.UUID
	High uuid.UUID
}

// NewPair orders a and b so that NewPair(a, b) == NewPair(b, a).
func NewPair(a, b uuid.UUID) Pair {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return Pair{Low: a, High: b}
	}
	return Pair{Low: b, High: a}
}

// Scope is the key that identifies at most one conversation.
type Scope struct {
	Pair      Pair
	ListingID *uuid.UUID
}

func NewScope(a, b uuid.UUID, listingID *uuid.UUID) Scope {
	if listingID != nil && *listingID == uuid.Nil {
		listingID = nil
	}
	return Scope{Pair: NewPair(a, b), ListingID: listingID}
}

// ListingKey is the value stored in listing_scope.
func (s Scope) ListingKey() string {
	if s.ListingID == nil {
		return ""
	}
	return s.ListingID.String()
}

// HasParticipant reports whether userID is one of the two participants.
func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.Participant1 == userID || c.Participant2 == userID
}

// OtherParticipant returns the participant that is not userID. The second
// result is false when userID is not part of the conversation.
func (c Conversation) OtherParticipant(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case c.Participant1:
		return c.Participant2, true
	case c.Participant2:
		return c.Participant1, true
	default:
		return uuid.Nil, false
	}
}
