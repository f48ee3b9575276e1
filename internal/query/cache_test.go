package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestKeyHasPrefix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		key    Key
		prefix Key
		want   bool
	}{
		{"messages:1", "messages", true},
		{"messages:1", "messages:1", true},
		{"messages:12", "messages:1", false},
		{"favorite-listings:u", "favorite", false},
		{"favorite:l:u", "favorite:l", true},
		{"favorite:l2:u", "favorite:l", false},
	}
	for _, tt := range tests {
		if got := tt.key.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("%q.HasPrefix(%q) = %v, want %v", tt.key, tt.prefix, got, tt.want)
		}
	}
}

func TestHasConversationKeyIsSymmetric(t *testing.T) {
	t.Parallel()
	a, b := uuid.New(), uuid.New()
	if HasConversation(a, b) != HasConversation(b, a) {
		t.Fatalf("expected symmetric key, got %q and %q", HasConversation(a, b), HasConversation(b, a))
	}
}

func TestInvalidatesTable(t *testing.T) {
	t.Parallel()
	conv, user, other, listing := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	args := Args{ConversationID: conv, UserID: user, OtherUserID: other, ListingID: listing}

	tests := []struct {
		m    Mutation
		want []Key
	}{
		{MutationSendMessage, []Key{Messages(conv), "conversations"}},
		{MutationMarkRead, []Key{Messages(conv), "conversations"}},
		{MutationGetOrCreate, []Key{"conversations", HasConversation(other, user)}},
		{MutationToggleFavorite, []Key{"favorites", "favorite-listings", Key("favorite:" + listing.String())}},
		{MutationRemoveFavorite, []Key{"favorites", "favorite-listings", Key("favorite:" + listing.String())}},
		{MutationConversationChange, []Key{Messages(conv), Conversations(user)}},
		{Mutation("unknown"), nil},
	}
	for _, tt := range tests {
		got := Invalidates(tt.m, args)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.m, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Fatalf("%s: got %v, want %v", tt.m, got, tt.want)
			}
		}
	}
}

func TestFetchCachesResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewCache(NewMemoryStore(), time.Minute, nil)
	var calls atomic.Int32

	load := func(context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"a", "b"}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, "favorites:u", load)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if len(got) != 2 || got[0] != "a" {
			t.Fatalf("unexpected result %v", got)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected 1 load, got %d", n)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewCache(store, time.Minute, nil)
	boom := errors.New("boom")

	if _, err := Fetch(ctx, c, "messages:c", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", store.Len())
	}
}

func TestFetchLoadOutlivesCallerCancel(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	c := NewCache(store, time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})

	type result struct {
		v   int
		err error
	}
	out := make(chan result, 1)
	go func() {
		v, err := Fetch(ctx, c, "messages:c", func(ctx context.Context) (int, error) {
			close(started)
			<-release
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			return 42, nil
		})
		out <- result{v, err}
	}()

	<-started
	cancel()
	close(release)

	res := <-out
	if res.err != nil || res.v != 42 {
		t.Fatalf("fetch = %d, %v; want 42, nil", res.v, res.err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected cached entry, got %d", store.Len())
	}
}

func TestFetchDeduplicatesConcurrentLoads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewCache(NewMemoryStore(), time.Minute, nil)
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, c, "conversations:u", load)
			if err != nil {
				t.Errorf("fetch: %v", err)
			}
			results[i] = v
		}(i)
	}
	// Give the goroutines time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single load, got %d", n)
	}
	for i, v := range results {
		if v != 42 {
			t.Fatalf("result %d: got %d", i, v)
		}
	}
}

func TestInvalidatedLoadDoesNotPopulate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewCache(store, time.Minute, nil)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan int)
	go func() {
		v, _ := Fetch(ctx, c, "messages:c", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()

	<-started
	c.Invalidate(ctx, "messages")

	// A request issued after the invalidation starts its own load.
	fresh, err := Fetch(ctx, c, "messages:c", func(context.Context) (int, error) { return 2, nil })
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fresh != 2 {
		t.Fatalf("expected fresh value 2, got %d", fresh)
	}

	close(release)
	if old := <-done; old != 1 {
		t.Fatalf("superseded caller should still get its value, got %d", old)
	}

	got, err := Fetch(ctx, c, "messages:c", func(context.Context) (int, error) { return 3, nil })
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected cache to hold the newer value 2, got %d", got)
	}
}

func TestApplyInvalidatesByPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewCache(store, time.Minute, nil)
	u1, u2, conv := uuid.New(), uuid.New(), uuid.New()

	for _, key := range []Key{Conversations(u1), Conversations(u2), Messages(conv), Favorites(u1)} {
		if _, err := Fetch(ctx, c, key, func(context.Context) (bool, error) { return true, nil }); err != nil {
			t.Fatalf("fetch %s: %v", key, err)
		}
	}

	c.Apply(ctx, MutationSendMessage, Args{ConversationID: conv})

	for _, key := range []Key{Conversations(u1), Conversations(u2), Messages(conv)} {
		if _, ok, _ := store.Get(ctx, key.String()); ok {
			t.Fatalf("expected %s to be invalidated", key)
		}
	}
	if _, ok, _ := store.Get(ctx, Favorites(u1).String()); !ok {
		t.Fatal("favorites must survive a message send")
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, "k", []byte("1"), time.Second)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}
	now = now.Add(2 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expected miss after expiry")
	}
}
