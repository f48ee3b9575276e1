package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/domain/favorite"
	"roomshare/internal/domain/message"
	"roomshare/internal/testutil"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
)

func newConversation(scope conversation.Scope, at time.Time) *conversation.Conversation {
	return &conversation.Conversation{
		ID:            uuid.New(),
		Participant1:  scope.Pair.Low,
		Participant2:  scope.Pair.High,
		ListingScope:  scope.ListingKey(),
		ListingID:     scope.ListingID,
		InitiatorID:   scope.Pair.Low,
		LastMessageAt: at,
		CreatedAt:     at,
	}
}

func TestConversationScopeIsUnique(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	listingID := uuid.New()

	cases := []struct {
		name  string
		first conversation.Scope
		again conversation.Scope
	}{
		{"no listing", conversation.NewScope(a, b, nil), conversation.NewScope(b, a, nil)},
		{"with listing", conversation.NewScope(a, b, &listingID), conversation.NewScope(b, a, &listingID)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := repo.Create(ctx, newConversation(tc.first, time.Now().UTC())); err != nil {
				t.Fatalf("first create: %v", err)
			}
			err := repo.Create(ctx, newConversation(tc.again, time.Now().UTC()))
			if !errors.Is(err, roomshare_errors.ErrAlreadyExists) {
				t.Fatalf("second create = %v, want ErrAlreadyExists", err)
			}
		})
	}
}

func TestFindByScopeSeparatesListings(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	listingID := uuid.New()

	general := newConversation(conversation.NewScope(a, b, nil), time.Now().UTC())
	if err := repo.Create(ctx, general); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindByScope(ctx, conversation.NewScope(b, a, nil))
	if err != nil || got.ID != general.ID {
		t.Fatalf("FindByScope(no listing) = %v, %v", got.ID, err)
	}
	if _, err := repo.FindByScope(ctx, conversation.NewScope(a, b, &listingID)); !errors.Is(err, roomshare_errors.ErrNotFound) {
		t.Fatalf("listing scope should be absent, got %v", err)
	}

	exists, err := repo.ExistsForPair(ctx, conversation.NewPair(b, a))
	if err != nil || !exists {
		t.Fatalf("ExistsForPair = %v, %v", exists, err)
	}
}

func TestListForUserOrdersByLastMessage(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()
	clock := testutil.NewClock()
	me := uuid.New()

	older := newConversation(conversation.NewScope(me, uuid.New(), nil), clock.Now())
	newer := newConversation(conversation.NewScope(uuid.New(), me, nil), clock.Now())
	unrelated := newConversation(conversation.NewScope(uuid.New(), uuid.New(), nil), clock.Now())
	for _, c := range []*conversation.Conversation{older, newer, unrelated} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.TouchLastMessageAt(ctx, older.ID, clock.Now()); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListForUser(ctx, me)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(list))
	}
	if list[0].ID != older.ID || list[1].ID != newer.ID {
		t.Fatalf("order = [%s %s], want touched conversation first", list[0].ID, list[1].ID)
	}
}

func TestTouchMissingConversation(t *testing.T) {
	repo := NewConversationRepository(testutil.NewDB(t))
	err := repo.TouchLastMessageAt(context.Background(), uuid.New(), time.Now())
	if !errors.Is(err, roomshare_errors.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMessagesOrderAndReadState(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	clock := testutil.NewClock()
	convID, a, b := uuid.New(), uuid.New(), uuid.New()

	same := clock.Now()
	var ids []uuid.UUID
	for i, content := range []string{"hi", "is it available?", "yes"} {
		sender, receiver := a, b
		if i == 2 {
			sender, receiver = b, a
		}
		id, err := uuid.NewV7()
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
		m := &message.Message{
			ID: id, ConversationID: convID, SenderID: sender, ReceiverID: receiver,
			Content: content, CreatedAt: same,
		}
		if err := repo.Create(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	history, err := repo.ListByConversation(ctx, convID)
	if err != nil {
		t.Fatal(err)
	}
	for i, m := range history {
		if m.ID != ids[i] {
			t.Fatalf("history[%d] = %s, want %s (equal timestamps break ties by id)", i, m.ID, ids[i])
		}
	}

	latest, err := repo.GetLatest(ctx, convID)
	if err != nil || latest.ID != ids[2] {
		t.Fatalf("GetLatest = %s, %v", latest.ID, err)
	}

	n, err := repo.MarkRead(ctx, convID, b, clock.Now())
	if err != nil || n != 2 {
		t.Fatalf("MarkRead = %d, %v; want 2", n, err)
	}
	n, err = repo.MarkRead(ctx, convID, b, clock.Now())
	if err != nil || n != 0 {
		t.Fatalf("second MarkRead = %d, %v; want 0", n, err)
	}
	unread, err := repo.CountUnread(ctx, convID, a)
	if err != nil || unread != 1 {
		t.Fatalf("CountUnread(a) = %d, %v; want 1", unread, err)
	}
}

func TestFavoriteCreateIfAbsentAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()
	owner := testutil.SeedProfile(t, db, "owner")
	l := testutil.SeedListing(t, db, owner.ID, "Sunny room")
	userID := uuid.New()

	fav := func() *favorite.Favorite {
		return &favorite.Favorite{ID: uuid.New(), UserID: userID, ListingID: l.ID, CreatedAt: time.Now().UTC()}
	}

	inserted, err := repo.CreateIfAbsent(ctx, fav())
	if err != nil || !inserted {
		t.Fatalf("first CreateIfAbsent = %v, %v", inserted, err)
	}
	inserted, err = repo.CreateIfAbsent(ctx, fav())
	if err != nil || inserted {
		t.Fatalf("second CreateIfAbsent = %v, %v; want no insert", inserted, err)
	}
	if err := repo.Create(ctx, fav()); !errors.Is(err, roomshare_errors.ErrAlreadyExists) {
		t.Fatalf("Create on existing pair = %v", err)
	}

	listings, err := repo.ListListings(ctx, userID)
	if err != nil || len(listings) != 1 || listings[0].Title != "Sunny room" {
		t.Fatalf("ListListings = %+v, %v", listings, err)
	}
	if listings[0].Amenities[0] != "WiFi" && listings[0].Amenities[0] != "Kitchen" {
		t.Fatalf("amenities not round-tripped: %v", listings[0].Amenities)
	}

	removed, err := repo.Delete(ctx, userID, l.ID)
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v", removed, err)
	}
	removed, err = repo.Delete(ctx, userID, l.ID)
	if err != nil || removed {
		t.Fatalf("second Delete = %v, %v; want nothing removed", removed, err)
	}
}

func TestListingTitle(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)
	owner := testutil.SeedProfile(t, db, "owner")
	l := testutil.SeedListing(t, db, owner.ID, "Studio near station")

	title, err := repo.GetTitle(context.Background(), l.ID)
	if err != nil || title != "Studio near station" {
		t.Fatalf("GetTitle = %q, %v", title, err)
	}
	if _, err := repo.GetTitle(context.Background(), uuid.New()); !errors.Is(err, roomshare_errors.ErrNotFound) {
		t.Fatalf("missing listing = %v", err)
	}
}
