package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeUploader struct {
	calls int
	err   error
	last  *s3.PutObjectInput
	body  string
}

func (f *fakeUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.calls++
	f.last = input
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(data)
	return &manager.UploadOutput{Key: input.Key}, nil
}

func TestUploadBuildsPublicPut(t *testing.T) {
	t.Parallel()
	up := &fakeUploader{}
	c := newClient(S3Config{Region: "eu-west-1", Bucket: "media"}, up, nil)

	if err := c.Upload(context.Background(), "avatars/u/avatar.png", "image/png", strings.NewReader("png"), 3); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if aws.ToString(up.last.Bucket) != "media" || aws.ToString(up.last.Key) != "avatars/u/avatar.png" {
		t.Fatalf("input = %+v", up.last)
	}
	if aws.ToString(up.last.ContentType) != "image/png" || aws.ToInt64(up.last.ContentLength) != 3 || up.body != "png" {
		t.Fatalf("content = %q %d %q", aws.ToString(up.last.ContentType), aws.ToInt64(up.last.ContentLength), up.body)
	}
	if up.last.ACL != "public-read" {
		t.Fatalf("acl = %q", up.last.ACL)
	}
}

func TestUploadBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()
	up := &fakeUploader{err: errors.New("connection reset")}
	c := newClient(S3Config{Region: "eu-west-1", Bucket: "media", BreakerFailures: 2, BreakerCooldown: time.Hour}, up, nil)

	for i := 0; i < 2; i++ {
		err := c.Upload(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
		if err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("attempt %d: err = %v", i, err)
		}
	}

	err := c.Upload(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if up.calls != 2 {
		t.Fatalf("calls = %d, open breaker should not reach S3", up.calls)
	}
}

func TestFileURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cfg  S3Config
		key  string
		want string
	}{
		{S3Config{Region: "eu-west-1", Bucket: "media"}, "a/b.png", "https://media.s3.eu-west-1.amazonaws.com/a/b.png"},
		{S3Config{Region: "eu-west-1", Bucket: "media", PublicBase: "https://cdn.example.com/"}, "a/b.png", "https://cdn.example.com/a/b.png"},
		{S3Config{Region: "eu-west-1", Bucket: "media"}, "", ""},
	}
	for _, tt := range tests {
		c := newClient(tt.cfg, &fakeUploader{}, nil)
		if got := c.FileURL(tt.key); got != tt.want {
			t.Errorf("FileURL(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
