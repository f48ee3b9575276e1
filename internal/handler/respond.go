package handler

import (
	"net/http"

	"roomshare/internal/services"
	"roomshare/internal/transport/httpdto"
	"roomshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError writes err with the status of its category. Unexpected
// errors are logged and reported without detail.
func respondError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.OrNop(nil).ErrorCtx(c.Request.Context(), "request failed", zap.Error(err))
		if status == http.StatusInternalServerError {
			message = "internal error"
		}
	}
	c.JSON(status, httpdto.NewErrorResponse(message, services.ErrorCode(err)))
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid "+name, "INVALID_REQUEST"))
		return uuid.Nil, false
	}
	return id, true
}
