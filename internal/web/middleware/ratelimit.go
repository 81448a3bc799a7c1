package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a per-client token bucket limiter.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	interval time.Duration
	burst    int
	ttl      time.Duration
	now      func() time.Time

	// OnLimit writes the response for rejected requests.
	// Defaults to a plain 429 "rate limit exceeded".
	OnLimit http.Handler
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client per minute, with
// bursts up to the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		interval: time.Minute / time.Duration(perMinute),
		burst:    perMinute,
		ttl:      3 * time.Minute,
		now:      time.Now,
	}
}

// Allow reports whether a request from key may proceed and consumes a token
// if so.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(rl.interval), rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Cleanup drops clients not seen within the idle TTL and returns how many
// were removed.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.ttl)
	removed := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every minute until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// Handler limits requests by client IP.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.Allow(ClientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}

		retry := int(math.Ceil(rl.interval.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		if rl.OnLimit != nil {
			rl.OnLimit.ServeHTTP(w, r)
			return
		}
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	})
}
