package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"roomshare/internal/repository"
	"roomshare/internal/testutil"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
)

func TestMediaKeys(t *testing.T) {
	t.Parallel()
	user := uuid.MustParse("7f1c2d9e-0000-4000-8000-000000000001")
	at := time.UnixMilli(1767225600123)

	if got, want := ListingImageKey(user, at, "abc123", "jpg"), "listings/"+user.String()+"/1767225600123-abc123.jpg"; got != want {
		t.Fatalf("listing key = %q, want %q", got, want)
	}
	if got, want := AvatarKey(user, "png"), "avatars/"+user.String()+"/avatar.png"; got != want {
		t.Fatalf("avatar key = %q, want %q", got, want)
	}
}

func TestUploadValidation(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	svc := NewMediaService(newFakeObjectStore(), repository.NewProfileRepository(db), 1, Options{})
	ctx := context.Background()
	user := uuid.New()

	tests := []struct {
		name string
		in   UploadInput
		want error
	}{
		{"anonymous", UploadInput{ContentType: "image/png", Size: 10, Body: imageInput(10)}, roomshare_errors.ErrUnauthorized},
		{"empty", UploadInput{UserID: user, ContentType: "image/png"}, roomshare_errors.ErrInvalidInput},
		{"not an image", UploadInput{UserID: user, ContentType: "application/pdf", Size: 10, Body: imageInput(10)}, roomshare_errors.ErrInvalidInput},
		{"too large", UploadInput{UserID: user, ContentType: "image/png", Size: 2 << 20, Body: imageInput(1)}, roomshare_errors.ErrTooLarge},
	}
	for _, tt := range tests {
		if _, err := svc.UploadListingImage(ctx, tt.in); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestUploadListingImage(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	store := newFakeObjectStore()
	svc := NewMediaService(store, repository.NewProfileRepository(db), 10, Options{})
	user := uuid.New()

	res, err := svc.UploadListingImage(context.Background(), UploadInput{UserID: user, ContentType: "image/webp", Size: 64, Body: imageInput(64)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(res.Key, "listings/"+user.String()+"/") || !strings.HasSuffix(res.Key, ".webp") {
		t.Fatalf("key = %q", res.Key)
	}
	if res.URL != "https://cdn.example.com/"+res.Key {
		t.Fatalf("url = %q", res.URL)
	}
	if len(store.objects[res.Key]) != 64 {
		t.Fatalf("stored %d bytes", len(store.objects[res.Key]))
	}
}

func TestUploadAvatarUpdatesProfile(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	profiles := repository.NewProfileRepository(db)
	svc := NewMediaService(newFakeObjectStore(), profiles, 10, Options{})
	ctx := context.Background()

	existing := testutil.SeedProfile(t, db, "has-profile")
	fresh := uuid.New()

	for _, user := range []uuid.UUID{existing.ID, fresh} {
		res, err := svc.UploadAvatar(ctx, UploadInput{UserID: user, ContentType: "image/jpeg", Size: 8, Body: imageInput(8)})
		if err != nil {
			t.Fatalf("upload for %s: %v", user, err)
		}
		if res.Key != AvatarKey(user, "jpg") {
			t.Fatalf("key = %q", res.Key)
		}
		p, err := profiles.GetByID(ctx, user)
		if err != nil {
			t.Fatalf("get profile: %v", err)
		}
		if p.AvatarURL == nil || *p.AvatarURL != res.URL {
			t.Fatalf("avatar url = %v, want %q", p.AvatarURL, res.URL)
		}
	}
}

func TestUploadStoreFailure(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	store := newFakeObjectStore()
	store.err = errors.New("s3 down")
	svc := NewMediaService(store, repository.NewProfileRepository(db), 10, Options{})

	_, err := svc.UploadListingImage(context.Background(), UploadInput{UserID: uuid.New(), ContentType: "image/png", Size: 4, Body: imageInput(4)})
	if !errors.Is(err, roomshare_errors.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}
