package signal

import (
	"sync"

	"github.com/dkeye/CommentClash/internal/domain"
	"golang.org/x/time/rate"
)

const (
	DefaultRateLimit = 10
	DefaultRateBurst = 20
)

// RateLimiter keeps one token bucket per connection.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[domain.PlayerID]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		perSecond = DefaultRateLimit
	}
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	return &RateLimiter{
		buckets: make(map[domain.PlayerID]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (rl *RateLimiter) Allow(sid domain.PlayerID) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[sid]
	if !ok {
		b = rate.NewLimiter(rl.limit, rl.burst)
		rl.buckets[sid] = b
	}
	rl.mu.Unlock()
	return b.Allow()
}

// Forget drops the bucket of a closed connection.
func (rl *RateLimiter) Forget(sid domain.PlayerID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, sid)
}
