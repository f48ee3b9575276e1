package message

import (
	"time"

	"github.com/google/uuid"
)

// MaxContentLength bounds a single chat entry.
const MaxContentLength = 5000

// Message represents the messages table. IDs are UUIDv7 so (created_at, id)
// is a total order that follows insertion order.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	ReceiverID     uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_receiver_unread,priority:1"`
	Content        string    `gorm:"type:text;not null"`
	IsRead         bool      `gorm:"not null;default:false;index:idx_messages_receiver_unread,priority:2"`
	ReadAt         *time.Time
	CreatedAt      time.Time `gorm:"not null;index:idx_messages_conversation_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}

// State is the read state of a message: Sent then Read, never back.
type State string

const (
	StateSent State = "SENT"
	StateRead State = "READ"
)

func (m Message) State() State {
	if m.IsRead {
		return StateRead
	}
	return StateSent
}
