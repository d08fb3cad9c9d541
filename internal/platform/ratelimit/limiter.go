package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

// KeyedLimiter keeps one token bucket per caller key. A bucket holds Limit
// tokens and refills at Limit per Window.
type KeyedLimiter struct {
	mu      sync.Mutex
	limit   int
	every   rate.Limit
	idleTTL time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New returns a limiter allowing limit requests per window for each key.
// A non-positive limit or window disables limiting.
func New(limit int, window time.Duration) *KeyedLimiter {
	l := &KeyedLimiter{
		limit:   limit,
		idleTTL: defaultIdleTTL,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	if limit > 0 && window > 0 {
		l.every = rate.Limit(float64(limit) / window.Seconds())
		if window > l.idleTTL {
			l.idleTTL = window
		}
	}
	return l
}

func (l *KeyedLimiter) Enabled() bool {
	return l != nil && l.limit > 0 && l.every > 0
}

// Allow consumes one token for key and reports whether the call may proceed.
func (l *KeyedLimiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		l.evictIdle(now)
		b = &bucket{limiter: rate.NewLimiter(l.every, l.limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// RetryAfter estimates how long key has to wait for the next token.
func (l *KeyedLimiter) RetryAfter(key string) time.Duration {
	if !l.Enabled() {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		return 0
	}
	now := l.now()
	tokens := b.limiter.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) / float64(l.every) * float64(time.Second))
}

func (l *KeyedLimiter) evictIdle(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}
