package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// bucketIdleTTL is how long an unused client bucket is kept
const bucketIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	mu        sync.Mutex
	rate      float64 // tokens per second
	capacity  float64
	clients   map[string]*bucket
	now       func() time.Time
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter creates a limiter refilling requestsPerMinute tokens a
// minute up to burstSize. A zero burst means one minute's worth.
func NewRateLimiter(requestsPerMinute, burstSize int) *RateLimiter {
	if burstSize <= 0 {
		burstSize = requestsPerMinute
	}
	return &RateLimiter{
		rate:     float64(requestsPerMinute) / 60,
		capacity: float64(burstSize),
		clients:  make(map[string]*bucket),
		now:      time.Now,
	}
}

// Allow reports whether key may make a request now
func (r *RateLimiter) Allow(key string) bool {
	ok, _ := r.Take(key)
	return ok
}

// Take spends one token of key's bucket. When the bucket is empty it
// returns false and how long until a token is available.
func (r *RateLimiter) Take(key string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	b, ok := r.clients[key]
	if !ok {
		b = &bucket{tokens: r.capacity, seen: now}
		r.clients[key] = b
	}
	b.tokens = math.Min(r.capacity, b.tokens+now.Sub(b.seen).Seconds()*r.rate)
	b.seen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if r.rate <= 0 {
		return false, time.Minute
	}
	return false, time.Duration((1 - b.tokens) / r.rate * float64(time.Second))
}

// sweep drops buckets idle long enough to be full again; callers hold mu
func (r *RateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < bucketIdleTTL {
		return
	}
	r.lastSweep = now
	for key, b := range r.clients {
		if now.Sub(b.seen) > bucketIdleTTL {
			delete(r.clients, key)
		}
	}
}

// RateLimit creates middleware for rate limiting requests per client IP.
// Limited responses carry a Retry-After header in whole seconds.
func RateLimit(requestsPerMinute, burstSize int) gin.HandlerFunc {
	limiter := NewRateLimiter(requestsPerMinute, burstSize)

	return func(c *gin.Context) {
		ok, wait := limiter.Take(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Try again later.",
			})
			return
		}

		c.Next()
	}
}

// RedisRateLimit rate limits per client IP with a fixed one-minute window
// shared across instances through Redis. Redis errors let requests through.
func RedisRateLimit(redisClient *redis.Client, requestsPerMinute int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, remaining, resetTime, err := checkRateLimit(c.Request.Context(), redisClient, clientIP, requestsPerMinute)
		if err != nil {
			logger.Error("Rate limit check failed", zap.Error(err), zap.String("client_ip", clientIP))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(requestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if !allowed {
			c.Header("Retry-After", strconv.FormatInt(resetTime-time.Now().Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Try again later.",
			})
			return
		}

		c.Next()
	}
}

// checkRateLimit counts a request against the current window
func checkRateLimit(ctx context.Context, redisClient *redis.Client, key string, limit int) (bool, int, int64, error) {
	now := time.Now().Unix()
	window := now / 60
	resetTime := (window + 1) * 60
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	pipe := redisClient.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, err
	}

	count := int(incr.Val())
	if count > limit {
		return false, 0, resetTime, nil
	}
	return true, limit - count, resetTime, nil
}
