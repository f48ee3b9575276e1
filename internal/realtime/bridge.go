// Package realtime turns message inserts on the change feed into refresh
// signals for the conversation a viewer has open.
package realtime

import (
	"context"
	"sync"
	"time"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/events"
	"roomshare/internal/query"
	"roomshare/pkg/logger"

	"github.com/google/uuid"
)

// Refresh tells a viewer to refetch a conversation. It never carries the
// message itself; the ordered history is always reread from the store.
type Refresh struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Authorizer checks that a viewer may watch a conversation.
type Authorizer interface {
	GetForParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Conversation, error)
}

type Bridge struct {
	feed  events.Feed
	cache *query.Cache
	auth  Authorizer
	log   *logger.Logger
}

// NewBridge wires the feed to the cache. cache and auth may be nil.
func NewBridge(feed events.Feed, cache *query.Cache, auth Authorizer, log *logger.Logger) *Bridge {
	return &Bridge{feed: feed, cache: cache, auth: auth, log: logger.OrNop(log)}
}

// ActiveWatches is the number of feed subscriptions currently held.
func (b *Bridge) ActiveWatches() int {
	return b.feed.ActiveSubscriptions()
}

// Watch subscribes to new messages of one conversation. onRefresh runs on
// the watch goroutine after the cached history and the viewer's directory
// have been invalidated. The watch ends on Close, on ctx cancellation or
// when the feed closes the stream; in every case the subscription is
// released.
func (b *Bridge) Watch(ctx context.Context, conversationID, viewerID uuid.UUID, onRefresh func(Refresh)) (*Watch, error) {
	if b.auth != nil {
		if _, err := b.auth.GetForParticipant(ctx, conversationID, viewerID); err != nil {
			return nil, err
		}
	}

	sub, err := b.feed.Subscribe(ctx, events.TableMessages, events.EventInsert, events.Filter{
		Column: "conversation_id",
		Value:  conversationID.String(),
	})
	if err != nil {
		return nil, err
	}

	w := &Watch{
		ConversationID: conversationID,
		sub:            sub,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	go w.run(ctx, b, viewerID, onRefresh)
	return w, nil
}

// Watch is a live subscription handle.
type Watch struct {
	ConversationID uuid.UUID

	sub  events.Subscription
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Close releases the subscription. Safe to call more than once and from
// inside the refresh callback.
func (w *Watch) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.sub.Close()
	})
	return err
}

// Done is closed once the watch goroutine has exited.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

func (w *Watch) run(ctx context.Context, b *Bridge, viewerID uuid.UUID, onRefresh func(Refresh)) {
	defer close(w.done)
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case change, ok := <-w.sub.Changes():
			if !ok {
				return
			}
			if b.cache != nil {
				b.cache.Apply(ctx, query.MutationConversationChange, query.Args{
					ConversationID: w.ConversationID,
					UserID:         viewerID,
				})
			}
			b.log.Debugf("refresh conversation %s for %s", w.ConversationID, viewerID)
			if onRefresh != nil {
				onRefresh(Refresh{ConversationID: w.ConversationID, OccurredAt: change.OccurredAt})
			}
		}
	}
}

// ConversationView tracks the single conversation a viewer has open.
type ConversationView struct {
	bridge    *Bridge
	ctx       context.Context
	viewerID  uuid.UUID
	onRefresh func(Refresh)

	mu      sync.Mutex
	current *Watch
	closed  bool
}

func (b *Bridge) NewView(ctx context.Context, viewerID uuid.UUID, onRefresh func(Refresh)) *ConversationView {
	return &ConversationView{bridge: b, ctx: ctx, viewerID: viewerID, onRefresh: onRefresh}
}

// Select switches the view to conversationID. The previous watch is torn
// down before the new one is opened, so a view never holds two.
func (v *ConversationView) Select(conversationID uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return context.Canceled
	}
	if v.current != nil && v.current.ConversationID == conversationID {
		select {
		case <-v.current.Done():
		default:
			return nil
		}
	}
	v.release()

	w, err := v.bridge.Watch(v.ctx, conversationID, v.viewerID, v.onRefresh)
	if err != nil {
		return err
	}
	v.current = w
	return nil
}

// Clear closes the current watch, if any, and keeps the view usable.
func (v *ConversationView) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.release()
}

// Current is the watched conversation, or uuid.Nil.
func (v *ConversationView) Current() uuid.UUID {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return uuid.Nil
	}
	return v.current.ConversationID
}

func (v *ConversationView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.release()
}

func (v *ConversationView) release() {
	if v.current == nil {
		return
	}
	if err := v.current.Close(); err != nil {
		v.bridge.log.Warnf("closing watch on %s: %v", v.current.ConversationID, err)
	}
	v.current = nil
}
