package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"roomshare/internal/services"
	"roomshare/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

const (
	uploadField     = "file"
	sniffLen        = 512
	multipartMargin = 1 << 20
)

type UploadHandler struct {
	media *services.MediaService
}

func NewUploadHandler(media *services.MediaService) *UploadHandler {
	return &UploadHandler{media: media}
}

func (h *UploadHandler) ListingImage(c *gin.Context) {
	h.upload(c, h.media.UploadListingImage)
}

func (h *UploadHandler) Avatar(c *gin.Context) {
	h.upload(c, h.media.UploadAvatar)
}

type uploadFunc func(ctx context.Context, in services.UploadInput) (services.UploadResult, error)

func (h *UploadHandler) upload(c *gin.Context, fn uploadFunc) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.media.MaxBytes()+multipartMargin)
	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse("file too large", "TOO_LARGE"))
			return
		}
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("missing file", "INVALID_REQUEST"))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unreadable file", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unreadable file", "INVALID_REQUEST"))
		return
	}
	head = head[:n]

	res, err := fn(c.Request.Context(), services.UploadInput{
		UserID:      userID,
		ContentType: contentType(head, header.Header.Get("Content-Type")),
		Size:        header.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.UploadResponse{Key: res.Key, URL: res.URL}))
}

// contentType trusts the sniffed type over the declared one.
func contentType(head []byte, declared string) string {
	sniffed := http.DetectContentType(head)
	if sniffed != "application/octet-stream" {
		return sniffed
	}
	return declared
}
