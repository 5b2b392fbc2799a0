package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	applog "github.com/pageza/foodgram/backend/internal/logger"
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

// localSweepThreshold is the number of local limiters kept before idle ones
// are swept.
const localSweepThreshold = 1024

type localLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter counts requests per user in fixed Redis windows. Without Redis,
// or when Redis fails, it falls back to an in-process token bucket per user.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig

	mu         sync.Mutex
	local      map[string]*localLimiter
	sweepAbove int
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:      redisClient,
		config:     config,
		local:      make(map[string]*localLimiter),
		sweepAbove: localSweepThreshold,
	}
}

// NewRecipeCreationRateLimiter limits recipe creation to limit per hour.
func NewRecipeCreationRateLimiter(redisClient *redis.Client, limit int) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_creation",
	})
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		allowed, remaining, resetTime := rl.Allow(c.Request.Context(), userID.String())

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			return
		}

		c.Next()
	}
}

// Allow consumes one request for key and reports whether it fits the limit.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time) {
	if rl.redis != nil {
		allowed, remaining, reset, err := rl.IsAllowed(ctx, key)
		if err == nil {
			return allowed, remaining, reset
		}
		applog.Warn(ctx, "redis rate limit check failed, using local limiter", "error", err)
	}
	return rl.allowLocal(key)
}

// IsAllowed checks if a request from the given user is allowed
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, userID string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, userID, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := windowStart.Add(rl.config.Window)
	allowed := count <= rl.config.Limit

	return allowed, remaining, resetTime, nil
}

func (rl *RateLimiter) allowLocal(key string) (bool, int, time.Time) {
	every := rl.config.Window / time.Duration(max(rl.config.Limit, 1))
	now := time.Now()

	rl.mu.Lock()
	entry, ok := rl.local[key]
	if !ok {
		if len(rl.local) >= rl.sweepAbove {
			rl.sweepLocked(now)
		}
		entry = &localLimiter{lim: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.local[key] = entry
	}
	entry.lastSeen = now
	lim := entry.lim
	rl.mu.Unlock()

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	remaining := max(int(tokens), 0)

	// Time until the next whole token is available.
	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) * float64(every)))
	}
	return allowed, remaining, reset
}

// sweepLocked drops limiters idle for a whole window. Their buckets have
// refilled, so a fresh limiter behaves the same. rl.mu must be held.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for key, entry := range rl.local {
		if now.Sub(entry.lastSeen) >= rl.config.Window {
			delete(rl.local, key)
		}
	}
}
