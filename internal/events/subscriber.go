package events

import "context"

// Publisher emits row change notifications.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Subscription is a live change stream. Close must be called on every exit
// path; it is safe to call more than once. Changes is closed once the
// subscription ends, whether by Close or by the feed going away.
type Subscription interface {
	Changes() <-chan Change
	Close() error
}

// Feed is a change feed keyed by table, event type and row filter.
type Feed interface {
	Publisher
	Subscribe(ctx context.Context, table string, eventType EventType, filter Filter) (Subscription, error)
	// ActiveSubscriptions is the number of subscriptions not yet closed.
	ActiveSubscriptions() int
}

// subscriptionBuffer bounds the per-subscriber queue. Changes are refetch
// signals, so when the queue is full the pending signal already covers the
// dropped one.
const subscriptionBuffer = 16
