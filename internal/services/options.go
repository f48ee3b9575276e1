package services

import (
	"context"
	"time"

	"roomshare/pkg/logger"
)

const DefaultStoreTimeout = 5 * time.Second

// Options is shared by every service.
type Options struct {
	// StoreTimeout bounds each store round trip. Zero means DefaultStoreTimeout.
	StoreTimeout time.Duration
	Logger       *logger.Logger
	// Now is the clock used for created_at, read_at and last_message_at.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	o.Logger = logger.OrNop(o.Logger)
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// storeContext derives the deadline for one store operation.
func (o Options) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.StoreTimeout)
}
