package handler

import (
	"net/http"

	"roomshare/internal/services"
	"roomshare/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	market *services.Marketplace
}

func NewListingHandler(market *services.Marketplace) *ListingHandler {
	return &ListingHandler{market: market}
}

// Contact reveals the poster's contact details to the poster or to anyone
// already in a conversation with them.
func (h *ListingHandler) Contact(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	contact, err := h.market.ListingContact(c.Request.Context(), userID, listingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromContact(contact)))
}
