package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/menezmethod/mwpriority/internal/apierror"
)

const (
	// bucketTTL is how long an idle key keeps its bucket.
	bucketTTL = 10 * time.Minute
	// bucketSweep is how often expired buckets are purged.
	bucketSweep = 5 * time.Minute
)

// RateLimiter implements a per-key token bucket rate limiter.
type RateLimiter struct {
	mu      sync.Mutex
	buckets *cache.Cache
	rate    float64 // tokens per second
	burst   int     // maximum tokens
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter with the given refill rate and burst size.
// Buckets idle for bucketTTL are dropped by the cache's janitor.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: cache.New(bucketTTL, bucketSweep),
		rate:    rps,
		burst:   burst,
	}
}

// RateLimit returns middleware that enforces per-key rate limits.
// It expects the API key to be in the request context (set by Auth middleware),
// so it must rank after auth in the priority list.
func RateLimit(rl *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := APIKeyFromContext(r.Context())
			if key == "" {
				// Auth has not run yet; nothing to key the bucket on.
				next.ServeHTTP(w, r)
				return
			}

			remaining, ok := rl.Allow(key)
			if !ok {
				RateLimitRejections.Inc()
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", "1")
				apierror.Write(w, apierror.RateLimited())
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}

// Allow checks whether the key has tokens available and consumes one if so.
// It returns the remaining token count and whether the request is allowed.
func (rl *RateLimiter) Allow(key string) (int, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	var b *bucket
	if v, found := rl.buckets.Get(key); found {
		b = v.(*bucket)
	} else {
		b = &bucket{tokens: float64(rl.burst), lastSeen: now}
	}
	// Touch the entry so an active key never expires.
	rl.buckets.SetDefault(key, b)

	// Refill tokens based on elapsed time.
	elapsed := now.Sub(b.lastSeen).Seconds()
	b.tokens = math.Min(float64(rl.burst), b.tokens+elapsed*rl.rate)
	b.lastSeen = now

	if b.tokens < 1 {
		return 0, false
	}

	b.tokens--
	return int(b.tokens), true
}

// Len returns the number of keys currently holding a bucket.
func (rl *RateLimiter) Len() int {
	return rl.buckets.ItemCount()
}
