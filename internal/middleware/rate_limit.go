package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/curasense/auth-service/internal/constants"
	"github.com/curasense/auth-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-IP sliding window. State is in-process; a
// multi-instance deployment gets a per-instance bound, which is still
// enough to blunt credential stuffing against a single node.
type RateLimiter struct {
	buckets    map[string][]time.Time
	maxRequest int
	window     time.Duration
	mu         sync.Mutex
}

func NewRateLimiter(maxRequest int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:    make(map[string][]time.Time),
		maxRequest: maxRequest,
		window:     window,
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	for ip, stamps := range rl.buckets {
		var valid []time.Time
		for _, t := range stamps {
			if now.Sub(t) <= rl.window {
				valid = append(valid, t)
			}
		}
		if len(valid) > 0 {
			rl.buckets[ip] = valid
		} else {
			delete(rl.buckets, ip)
		}
	}
}

// Allow records the request and reports whether it fits the window.
func (rl *RateLimiter) Allow(ip string, now time.Time) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(now)

	stamps := rl.buckets[ip]
	if len(stamps) >= rl.maxRequest {
		return false, 0
	}

	rl.buckets[ip] = append(stamps, now)
	return true, rl.maxRequest - len(stamps) - 1
}

// RateLimit bounds requests per client IP inside a sliding window. The
// credential endpoints get a much tighter limit than the general API.
func RateLimit(maxRequest int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(maxRequest, window)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		allowed, remaining := limiter.Allow(ip, now)
		if !allowed {
			logger.WarnWithContext(c.Request.Context(), "Rate limit exceeded").
				String("client_ip", ip).
				String("method", c.Request.Method).
				String("path", c.Request.URL.Path).
				Int("max_requests", maxRequest).
				Duration(window).
				Log()

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, constants.BuildErrorResponse("too many requests", nil))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequest))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Add(window).Unix()))

		c.Next()
	}
}
