package httpdto

import (
	"time"

	"roomshare/internal/domain/message"
)

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content" binding:"required"`
}

type MessageResponse struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	ReceiverID     string     `json:"receiver_id"`
	Content        string     `json:"content"`
	IsRead         bool       `json:"is_read"`
	State          string     `json:"state"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

func FromMessage(m message.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		ReceiverID:     m.ReceiverID.String(),
		Content:        m.Content,
		IsRead:         m.IsRead,
		State:          string(m.State()),
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}

func FromMessageSlice(items []message.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, FromMessage(m))
	}
	return out
}
