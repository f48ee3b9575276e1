package events

import (
	"context"
	"sync"
)

// MemoryFeed is an in-process Feed for single node deployments and tests.
type MemoryFeed struct {
	resolver ChannelResolver

	mu   sync.RWMutex
	subs map[string]map[*memorySubscription]struct{}
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		resolver: NewColumnChannelResolver(),
		subs:     make(map[string]map[*memorySubscription]struct{}),
	}
}

func (f *MemoryFeed) Publish(ctx context.Context, change Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, channel := range f.resolver.PublishChannels(change) {
		for sub := range f.subs[channel] {
			sub.deliver(change)
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, table string, eventType EventType, filter Filter) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	channel := f.resolver.SubscribeChannel(table, eventType, filter)
	sub := &memorySubscription{
		feed:    f,
		channel: channel,
		ch:      make(chan Change, subscriptionBuffer),
	}

	f.mu.Lock()
	if f.subs[channel] == nil {
		f.subs[channel] = make(map[*memorySubscription]struct{})
	}
	f.subs[channel][sub] = struct{}{}
	f.mu.Unlock()

	return sub, nil
}

func (f *MemoryFeed) ActiveSubscriptions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, set := range f.subs {
		n += len(set)
	}
	return n
}

func (f *MemoryFeed) remove(sub *memorySubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set, ok := f.subs[sub.channel]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(f.subs, sub.channel)
		}
	}
}

type memorySubscription struct {
	feed    *MemoryFeed
	channel string
	ch      chan Change

	mu     sync.Mutex
	closed bool
}

func (s *memorySubscription) Changes() <-chan Change {
	return s.ch
}

func (s *memorySubscription) deliver(change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- change:
	default:
	}
}

func (s *memorySubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.feed.remove(s)
	return nil
}
