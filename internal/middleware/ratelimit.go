package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimit is an in-memory token bucket keyed by client IP.
func RateLimit(rps int, burst int) gin.HandlerFunc {
	type bucket struct {
		tokens float64
		last   time.Time
	}
	var mu sync.Mutex
	buckets := map[string]*bucket{}
	refill := float64(rps)
	return func(c *gin.Context) {
		key := c.ClientIP()
		now := time.Now()
		mu.Lock()
		b := buckets[key]
		if b == nil {
			b = &bucket{tokens: float64(burst), last: now}
			buckets[key] = b
		}
		b.tokens = min(float64(burst), b.tokens+now.Sub(b.last).Seconds()*refill)
		b.last = now
		if b.tokens < 1 {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		b.tokens--
		mu.Unlock()
		c.Next()
	}
}
