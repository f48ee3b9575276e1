package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHubRegisterAndUnregister(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	a := NewClient(nil, uuid.New())
	b := NewClient(nil, uuid.New())

	hub.Register(a)
	hub.Register(b)
	if got := hub.GetClientCount(); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}

	hub.Unregister(a)
	hub.Unregister(a)
	if got := hub.GetClientCount(); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	if _, ok := <-a.Send; ok {
		t.Fatal("unregistered client send channel still open")
	}
}

func TestHubAfterRunReturns(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	live := NewClient(nil, uuid.New())
	hub.Register(live)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, ok := <-live.Send; ok {
		t.Fatal("client connected at shutdown was not closed")
	}

	// Both calls must return without a running loop.
	finished := make(chan struct{})
	late := NewClient(nil, uuid.New())
	go func() {
		for i := 0; i < 300; i++ {
			hub.Register(late)
			hub.Unregister(late)
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked after Run returned")
	}

	if got := hub.GetClientCount(); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
	if _, ok := <-late.Send; ok {
		t.Fatal("client registered after shutdown was not closed")
	}
}
