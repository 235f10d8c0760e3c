package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RateLimitMiddleware struct {
	client *redis.Client
}

func NewRateLimitMiddleware(client *redis.Client) *RateLimitMiddleware {
	return &RateLimitMiddleware{client: client}
}

// allow counts a hit against key and reports whether the caller is still
// inside the window budget. Incr and Expire travel in one transaction so
// a crash between them cannot leave a counter without a deadline.
func (rm *RateLimitMiddleware) allow(c *gin.Context, key string, requests int, window time.Duration) (bool, error) {
	ctx := c.Request.Context()
	pipe := rm.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() <= int64(requests), nil
}

// RateLimit creates a rate limiting middleware keyed by authenticated user
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		key := fmt.Sprintf("rate_limit:%v:%s", userID, c.Request.URL.Path)
		allowed, err := rm.allow(c, key, requests, window)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			c.Abort()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitIP creates a rate limiting middleware for public routes based on IP address
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit_ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		allowed, err := rm.allow(c, key, requests, window)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			c.Abort()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
