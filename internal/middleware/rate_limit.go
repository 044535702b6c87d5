package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter throttles the expensive ingestion endpoints per client IP
// using a fixed redis window. Every ingest fans out multiple model calls,
// so an unthrottled client can burn through the API budget quickly.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Middleware returns a Gin middleware enforcing the limit. With no redis
// client configured it passes every request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.redis == nil {
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), c.ClientIP())
		if err != nil {
			// redis trouble must not take the API down
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// IsAllowed checks whether the client may proceed.
// Returns: allowed, remaining requests, reset time, error.
func (rl *RateLimiter) IsAllowed(ctx context.Context, clientKey string) (bool, int, time.Time, error) {
	key := fmt.Sprintf("%s:%s", rl.config.KeyPrefix, clientKey)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, time.Time{}, err
		}
	}

	ttl, err := rl.redis.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	resetTime := time.Now().Add(ttl)

	remaining := rl.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return int(count) <= rl.config.Limit, remaining, resetTime, nil
}
