// In-memory token-bucket rate limiting. The recognition endpoints fan out
// to paid external APIs, so edge throttling doubles as cost protection.
// Process-local only; a horizontally scaled deployment needs a shared
// limiter to enforce a global budget.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Idle buckets are evicted after bucketTTL, checked at most once per
// sweepEvery so the sweep never dominates the hot path.
const (
	bucketTTL  = 10 * time.Minute
	sweepEvery = time.Minute
)

// keyFunc selects the identity a bucket is keyed by. Implementations return
// a stable string per caller, namespaced to avoid collisions ("user:7",
// "ip:203.0.113.9").
type keyFunc func(*gin.Context) string

// KeyByUserOrIP prefers an authenticated identity (Gin context key "userID",
// set by handlers that resolved the caller) and falls back to the client IP.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get("userID"); ok {
			if s, ok := v.(string); ok && s != "" {
				return "user:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller key. Buckets live in a
// mutex-guarded map and are created on demand; a periodic sweep drops the
// ones nothing has touched for bucketTTL. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter builds a limiter allowing rps tokens per second with the
// given burst, keyed by keyFn. A burst <= 0 is coerced to 1 so the limiter
// never silently admits nothing.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		keyFn:     keyFn,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// take returns the bucket for key, creating it if absent. The idle sweep
// runs first so a stale bucket is evicted even when it is the one being
// fetched.
func (rl *RateLimiter) take(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= sweepEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= bucketTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.lim
	}
	b := &bucket{lim: rate.NewLimiter(rl.rps, rl.burst), lastSeen: now}
	rl.buckets[key] = b
	return b.lim
}

// Handler enforces the per-key limit. Rejected requests get a 429 with the
// standard error envelope and a minimal Retry-After.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.take(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
