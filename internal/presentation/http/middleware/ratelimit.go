package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter applies a fixed-window per-client cap. Windows are keyed by
// client IP and reset lazily on access, so the map stays small for the
// traffic a single advisory backend sees.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*clientWindow

	limit  int
	window time.Duration
	nowFn  func() time.Time
}

type clientWindow struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
		nowFn:   time.Now,
	}
}

// Allow reports whether the client may proceed and records the request
func (rl *RateLimiter) Allow(clientKey string) bool {
	now := rl.nowFn()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.windows[clientKey]
	if !exists || now.Sub(w.start) >= rl.window {
		rl.windows[clientKey] = &clientWindow{start: now, count: 1}
		return true
	}

	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// Middleware returns the gin handler enforcing the limit
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again shortly",
			})
			return
		}
		c.Next()
	}
}
