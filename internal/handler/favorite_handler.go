package handler

import (
	"net/http"

	"roomshare/internal/services"
	"roomshare/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FavoriteHandler struct {
	market *services.Marketplace
}

func NewFavoriteHandler(market *services.Marketplace) *FavoriteHandler {
	return &FavoriteHandler{market: market}
}

func (h *FavoriteHandler) ListIDs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ids, err := h.market.FavoriteIDs(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromFavoriteIDs(ids)))
}

func (h *FavoriteHandler) ListListings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.market.FavoriteListings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromListingSlice(items)))
}

func (h *FavoriteHandler) Get(c *gin.Context) {
	userID, listingID, ok := favoriteTarget(c)
	if !ok {
		return
	}
	fav, err := h.market.IsFavorite(c.Request.Context(), userID, listingID)
	if err != nil {
		respondError(c, err)
		return
	}
	writeFavoriteState(c, listingID, fav)
}

func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, listingID, ok := favoriteTarget(c)
	if !ok {
		return
	}
	if err := h.market.AddFavorite(c.Request.Context(), userID, listingID); err != nil {
		respondError(c, err)
		return
	}
	writeFavoriteState(c, listingID, true)
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, listingID, ok := favoriteTarget(c)
	if !ok {
		return
	}
	if err := h.market.RemoveFavorite(c.Request.Context(), userID, listingID); err != nil {
		respondError(c, err)
		return
	}
	writeFavoriteState(c, listingID, false)
}

// Toggle flips the favorite. The body is optional; the stored state decides
// the outcome, not the client's belief.
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	var req httpdto.ToggleFavoriteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
			return
		}
	}
	userID, listingID, ok := favoriteTarget(c)
	if !ok {
		return
	}

	fav, err := h.market.ToggleFavorite(c.Request.Context(), userID, listingID, req.CurrentState)
	if err != nil {
		respondError(c, err)
		return
	}
	writeFavoriteState(c, listingID, fav)
}

func favoriteTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	listingID, ok := pathID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, listingID, true
}

func writeFavoriteState(c *gin.Context, listingID uuid.UUID, fav bool) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FavoriteStateResponse{
		ListingID:  listingID.String(),
		IsFavorite: fav,
	}))
}
