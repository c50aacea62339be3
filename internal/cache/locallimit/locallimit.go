// Package locallimit is the in-process fallback for the Redis rate limiter,
// used when campus-api runs without Redis.
package locallimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. Buckets idle for longer than ttl are
// dropped on the next call.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	ttl     time.Duration
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		ttl:     10 * time.Minute,
		now:     time.Now,
	}
}

// Allow spends one token from key's bucket. The bucket refills limit tokens per
// window with a burst of limit. The count is always 0: token buckets do not
// track hits.
func (l *Limiter) Allow(_ context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	if limit <= 0 || window <= 0 {
		return true, 0, nil
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(now)
	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(window / time.Duration(limit))
		b = &bucket{lim: rate.NewLimiter(every, int(limit))}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1), 0, nil
}

func (l *Limiter) evict(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.ttl {
			delete(l.buckets, k)
		}
	}
}

func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
