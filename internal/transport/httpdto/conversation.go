package httpdto

import (
	"time"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/domain/profile"
)

type CreateConversationRequest struct {
	OtherUserID string `json:"other_user_id" binding:"required"`
	ListingID   string `json:"listing_id"`
}

type ConversationResponse struct {
	ID            string    `json:"id"`
	Participant1  string    `json:"participant_1"`
	Participant2  string    `json:"participant_2"`
	ListingID     string    `json:"listing_id,omitempty"`
	InitiatorID   string    `json:"initiator_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

type OpenConversationResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	Created      bool                 `json:"created"`
}

type ProfileSummary struct {
	ID        string  `json:"id"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type ConversationListItem struct {
	ConversationResponse
	OtherUserID  string           `json:"other_user_id"`
	OtherUser    *ProfileSummary  `json:"other_user"`
	ListingTitle string           `json:"listing_title,omitempty"`
	LastMessage  *MessageResponse `json:"last_message"`
	UnreadCount  int64            `json:"unread_count"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

func FromConversation(c conversation.Conversation) ConversationResponse {
	res := ConversationResponse{
		ID:            c.ID.String(),
		Participant1:  c.Participant1.String(),
		Participant2:  c.Participant2.String(),
		InitiatorID:   c.InitiatorID.String(),
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
	if c.ListingID != nil {
		res.ListingID = c.ListingID.String()
	}
	return res
}

func FromProfileSummary(p *profile.Profile) *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{ID: p.ID.String(), FullName: p.FullName, AvatarURL: p.AvatarURL}
}
