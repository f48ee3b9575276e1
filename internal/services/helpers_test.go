package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"roomshare/internal/events"
	"roomshare/internal/query"
	"roomshare/internal/repository"
	"roomshare/internal/testutil"

	"gorm.io/gorm"
)

type harness struct {
	db            *gorm.DB
	feed          *events.MemoryFeed
	store         *query.MemoryStore
	cache         *query.Cache
	conversations *ConversationService
	messages      *MessageService
	favorites     *FavoriteService
	contacts      *ContactService
	market        *Marketplace
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock()
	opts := Options{StoreTimeout: 5 * time.Second, Now: clock.Now}

	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	listingRepo := repository.NewListingRepository(db)
	favRepo := repository.NewFavoriteRepository(db)

	h := &harness{
		db:    db,
		feed:  events.NewMemoryFeed(),
		store: query.NewMemoryStore(),
	}
	h.cache = query.NewCache(h.store, time.Minute, nil)
	h.conversations = NewConversationService(convRepo, msgRepo, profileRepo, listingRepo, opts)
	h.messages = NewMessageService(db, convRepo, msgRepo, h.feed, opts)
	h.favorites = NewFavoriteService(favRepo, listingRepo, opts)
	h.contacts = NewContactService(listingRepo, profileRepo, convRepo, opts)
	h.market = NewMarketplace(h.conversations, h.messages, h.favorites, h.contacts, h.cache)
	return h
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeObjectStore) FileURL(key string) string {
	return "https://cdn.example.com/" + key
}

func imageInput(size int) io.Reader {
	return bytes.NewReader(bytes.Repeat([]byte{0xff}, size))
}
