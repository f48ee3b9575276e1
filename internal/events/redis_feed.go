package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"roomshare/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisFeed implements Feed over Redis Pub/Sub so that every API node sees
// changes written by any other node.
type RedisFeed struct {
	client   *redis.Client
	resolver ChannelResolver
	log      *logger.Logger
	active   atomic.Int64
}

func NewRedisFeed(client *redis.Client, log *logger.Logger) *RedisFeed {
	return &RedisFeed{
		client:   client,
		resolver: NewColumnChannelResolver(),
		log:      logger.OrNop(log),
	}
}

func (f *RedisFeed) Publish(ctx context.Context, change Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	pipe := f.client.Pipeline()
	for _, channel := range f.resolver.PublishChannels(change) {
		pipe.Publish(ctx, channel, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish %s %s: %w", change.Table, change.Type, err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, table string, eventType EventType, filter Filter) (Subscription, error) {
	channel := f.resolver.SubscribeChannel(table, eventType, filter)
	pubsub := f.client.Subscribe(ctx, channel)
	// Wait for the confirmation so no change published after Subscribe
	// returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &redisSubscription{
		feed:   f,
		pubsub: pubsub,
		filter: filter,
		ch:     make(chan Change, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	f.active.Add(1)
	go sub.pump(channel)
	return sub, nil
}

func (f *RedisFeed) ActiveSubscriptions() int {
	return int(f.active.Load())
}

type redisSubscription struct {
	feed   *RedisFeed
	pubsub *redis.PubSub
	filter Filter
	ch     chan Change
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) Changes() <-chan Change {
	return s.ch
}

func (s *redisSubscription) pump(channel string) {
	defer close(s.done)
	defer close(s.ch)

	for msg := range s.pubsub.Channel() {
		var change Change
		if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
			s.feed.log.Warnf("dropping malformed change on %s: %v", channel, err)
			continue
		}
		if !s.filter.Matches(change) {
			continue
		}
		select {
		case s.ch <- change:
		default:
		}
	}
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.pubsub.Close()
		<-s.done
		s.feed.active.Add(-1)
	})
	return err
}
