package database_test

import (
	"context"
	"testing"

	"roomshare/internal/domain/message"
	"roomshare/internal/testutil"
	"roomshare/pkg/database"
)

func TestSeedAndTruncate(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	ctx := context.Background()

	res, err := database.Seed(ctx, db, &database.SeedConfig{Users: 3, ListingsPerUser: 2, MessagesPerChat: 4})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(res.Profiles) != 3 || len(res.Listings) != 6 || len(res.Conversations) != 2 || len(res.Messages) != 8 {
		t.Fatalf("unexpected sizes: %d profiles, %d listings, %d conversations, %d messages",
			len(res.Profiles), len(res.Listings), len(res.Conversations), len(res.Messages))
	}

	for _, conv := range res.Conversations {
		if conv.Participant1.String() >= conv.Participant2.String() {
			t.Fatalf("participants not ordered: %s %s", conv.Participant1, conv.Participant2)
		}
	}

	var unread int64
	if err := db.Model(&message.Message{}).Where("is_read = ?", false).Count(&unread).Error; err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 2 {
		t.Fatalf("unread = %d, want one per conversation", unread)
	}

	counts, err := database.TableCounts(ctx, db)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts["messages"] != 8 || counts["favorites"] != 2 {
		t.Fatalf("counts = %v", counts)
	}

	if err := database.Truncate(ctx, db); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	counts, err = database.TableCounts(ctx, db)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	for table, n := range counts {
		if n != 0 {
			t.Fatalf("%s still has %d rows", table, n)
		}
	}
}

func TestSeedNeedsTwoUsers(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	if _, err := database.Seed(context.Background(), db, &database.SeedConfig{Users: 1}); err == nil {
		t.Fatal("expected error")
	}
}
