package handler

import (
	"net/http"

	"roomshare/internal/services"
	"roomshare/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	market *services.Marketplace
}

func NewConversationHandler(market *services.Marketplace) *ConversationHandler {
	return &ConversationHandler{market: market}
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.market.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]httpdto.ConversationListItem, 0, len(items))
	for _, item := range items {
		out = append(out, fromSummary(item))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(out))
}

// Create resolves the conversation with another user, creating it on first
// contact. 201 means it was created by this call.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req httpdto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	otherID, err := uuid.Parse(req.OtherUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid other_user_id", "INVALID_REQUEST"))
		return
	}
	var listingID *uuid.UUID
	if req.ListingID != "" {
		id, err := uuid.Parse(req.ListingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid listing_id", "INVALID_REQUEST"))
			return
		}
		listingID = &id
	}

	conv, created, err := h.market.OpenConversation(c.Request.Context(), userID, otherID, listingID)
	if err != nil {
		respondError(c, err)
		return
	}
	writeOpened(c, conv, created)
}

func (h *ConversationHandler) Exists(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user_id", "INVALID_REQUEST"))
		return
	}

	exists, err := h.market.HasConversation(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ExistsResponse{Exists: exists}))
}

// OpenForListing starts the conversation with a listing's poster.
func (h *ConversationHandler) OpenForListing(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	conv, created, err := h.market.OpenListingConversation(c.Request.Context(), userID, listingID)
	if err != nil {
		respondError(c, err)
		return
	}
	writeOpened(c, conv, created)
}

func fromSummary(s services.ConversationSummary) httpdto.ConversationListItem {
	item := httpdto.ConversationListItem{
		ConversationResponse: httpdto.FromConversation(s.Conversation),
		OtherUserID:          s.OtherUserID.String(),
		OtherUser:            httpdto.FromProfileSummary(s.OtherUser),
		ListingTitle:         s.ListingTitle,
		UnreadCount:          s.UnreadCount,
	}
	if s.LastMessage != nil {
		last := httpdto.FromMessage(*s.LastMessage)
		item.LastMessage = &last
	}
	return item
}
