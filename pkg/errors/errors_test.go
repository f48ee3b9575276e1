package roomshare_errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestStoreWrapsBackendFailures(t *testing.T) {
	err := Store("insert message", errors.New("connection reset"))
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if !Retryable(err) {
		t.Fatalf("store errors must be retryable")
	}
}

func TestStoreKeepsDomainErrors(t *testing.T) {
	cases := []error{ErrNotFound, ErrAlreadyExists, ErrForbidden, Invalid("content is empty")}
	for _, in := range cases {
		out := Store("op", in)
		if out != in {
			t.Errorf("Store(%v) = %v, want unchanged", in, out)
		}
	}
}

func TestStoreDeadline(t *testing.T) {
	err := Store("list conversations", fmt.Errorf("query: %w", context.DeadlineExceeded))
	if !errors.Is(err, ErrStore) {
		t.Fatalf("deadline should surface as ErrStore, got %v", err)
	}
}

func TestStoreNil(t *testing.T) {
	if Store("op", nil) != nil {
		t.Fatal("nil in, nil out")
	}
}

func TestInvalidIsValidation(t *testing.T) {
	err := Invalid("content exceeds %d characters", 5000)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if Retryable(err) {
		t.Fatal("validation errors are not retryable")
	}
}
