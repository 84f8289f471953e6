package notify

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Throttle limits alerts per item so a burst of crafts against the same
// low material doesn't flood the alert channel. Suppressed alerts return
// ErrThrottled.
type Throttle struct {
	next  Notifier
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle wraps next with a token bucket per (kind, item).
// burst < 1 is treated as 1.
func NewThrottle(next Notifier, limit rate.Limit, burst int) *Throttle {
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		next:     next,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Notify forwards the alert if the item's bucket has a token.
func (t *Throttle) Notify(ctx context.Context, a Alert) error {
	if !t.limiter(string(a.Kind) + "/" + a.Item).Allow() {
		return ErrThrottled
	}
	return t.next.Notify(ctx, a)
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[key] = l
	}
	return l
}
