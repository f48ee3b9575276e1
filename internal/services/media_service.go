package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"roomshare/internal/domain/profile"
	"roomshare/internal/repository"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStore is the blob store media is written to.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

type MediaService struct {
	store    ObjectStore
	profiles repository.ProfileRepository
	maxBytes int64
	opts     Options
}

func NewMediaService(store ObjectStore, profiles repository.ProfileRepository, maxUploadMB int, opts Options) *MediaService {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &MediaService{
		store:    store,
		profiles: profiles,
		maxBytes: int64(maxUploadMB) << 20,
		opts:     opts.withDefaults(),
	}
}

type UploadInput struct {
	UserID      uuid.UUID
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadResult struct {
	Key string
	URL string
}

func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// UploadListingImage stores a new listing photo under a unique key.
func (s *MediaService) UploadListingImage(ctx context.Context, in UploadInput) (UploadResult, error) {
	ext, err := s.validate(in)
	if err != nil {
		return UploadResult{}, err
	}
	suffix, err := randomSuffix()
	if err != nil {
		return UploadResult{}, err
	}
	key := ListingImageKey(in.UserID, s.opts.Now(), suffix, ext)
	return s.put(ctx, key, in)
}

// UploadAvatar replaces the user's avatar and points their profile at it.
func (s *MediaService) UploadAvatar(ctx context.Context, in UploadInput) (UploadResult, error) {
	ext, err := s.validate(in)
	if err != nil {
		return UploadResult{}, err
	}
	res, err := s.put(ctx, AvatarKey(in.UserID, ext), in)
	if err != nil {
		return UploadResult{}, err
	}

	storeCtx, cancel := s.opts.storeContext(ctx)
	defer cancel()
	if err := s.setAvatar(storeCtx, in.UserID, res.URL); err != nil {
		return UploadResult{}, err
	}
	return res, nil
}

func (s *MediaService) setAvatar(ctx context.Context, userID uuid.UUID, url string) error {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, roomshare_errors.ErrNotFound) {
		now := s.opts.Now()
		err = s.profiles.Create(ctx, &profile.Profile{ID: userID, AvatarURL: &url, CreatedAt: now, UpdatedAt: now})
		return roomshare_errors.Store("create profile", err)
	}
	if err != nil {
		return roomshare_errors.Store("get profile", err)
	}
	p.AvatarURL = &url
	p.UpdatedAt = s.opts.Now()
	return roomshare_errors.Store("update profile", s.profiles.Update(ctx, p))
}

func (s *MediaService) validate(in UploadInput) (string, error) {
	if in.UserID == uuid.Nil {
		return "", roomshare_errors.ErrUnauthorized
	}
	if in.Body == nil || in.Size <= 0 {
		return "", roomshare_errors.Invalid("file is required")
	}
	if in.Size > s.maxBytes {
		return "", roomshare_errors.ErrTooLarge
	}
	ext, ok := imageExtensions[in.ContentType]
	if !ok {
		return "", roomshare_errors.Invalid("unsupported content type %q", in.ContentType)
	}
	return ext, nil
}

func (s *MediaService) put(ctx context.Context, key string, in UploadInput) (UploadResult, error) {
	if err := s.store.Upload(ctx, key, in.ContentType, in.Body, in.Size); err != nil {
		s.opts.Logger.ErrorCtx(ctx, "upload failed", zap.String("key", key), zap.Error(err))
		return UploadResult{}, roomshare_errors.Store("upload", err)
	}
	return UploadResult{Key: key, URL: s.store.FileURL(key)}, nil
}

// ListingImageKey is listings/<user>/<unix-ms>-<suffix>.<ext>.
func ListingImageKey(userID uuid.UUID, at time.Time, suffix, ext string) string {
	return fmt.Sprintf("listings/%s/%d-%s.%s", userID, at.UnixMilli(), suffix, ext)
}

// AvatarKey is avatars/<user>/avatar.<ext>; a new upload overwrites the old.
func AvatarKey(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("avatars/%s/avatar.%s", userID, ext)
}

func randomSuffix() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
