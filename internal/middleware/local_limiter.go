package middleware

import (
	"context"
	"math"
	"sync"
	"time"

	"roomshare/internal/redis"

	"golang.org/x/time/rate"
)

const idleLimiterTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalMessageLimiter is a per-process token bucket per user. It stands in
// for the Redis limiter when the service runs without Redis, so limits are
// per instance.
type LocalMessageLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	every     rate.Limit
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewLocalMessageLimiter(limit int, window time.Duration) *LocalMessageLimiter {
	if limit <= 0 || window <= 0 {
		cfg := redis.DefaultRateLimitConfig()
		limit, window = cfg.MessageLimit, cfg.MessageWindow
	}
	return &LocalMessageLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		every:    rate.Limit(float64(limit) / window.Seconds()),
		window:   window,
		now:      time.Now,
	}
}

func (l *LocalMessageLimiter) AllowMessage(_ context.Context, userID string) (*redis.RateLimitResult, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	v, ok := l.visitors[userID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.limit)}
		l.visitors[userID] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)
	remaining := int(math.Max(0, math.Floor(tokens)))

	// Time until the bucket is full again.
	missing := float64(l.limit) - tokens
	resetIn := time.Duration(missing / float64(l.every) * float64(time.Second))

	return &redis.RateLimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetIn:   resetIn,
		Limit:     l.limit,
	}, nil
}

func (l *LocalMessageLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-idleLimiterTTL)
	for id, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, id)
		}
	}
}
