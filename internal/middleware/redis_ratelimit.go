package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	redisx "github.com/samirwankhede/pagila-reports/internal/redis"
)

// Sliding window over a sorted set of request timestamps.
// Returns {allowed, remaining}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window * 1000)
local current = redis.call('ZCARD', key)
if current < limit then
  redis.call('ZADD', key, now, member)
  redis.call('PEXPIRE', key, window * 1000)
  return {1, limit - current - 1}
end
return {0, 0}
`)

// RedisRateLimit shares the request budget across replicas. If Redis errors
// the request is let through.
func RedisRateLimit(client *redis.Client, rps int, burst int) gin.HandlerFunc {
	window := time.Duration(burst) * time.Second / time.Duration(max(rps, 1))
	seconds := max(int(window.Seconds()), 1)
	return func(c *gin.Context) {
		key := fmt.Sprintf("pagila:rate_limit:%s", c.ClientIP())
		now := time.Now()

		res, err := slidingWindow.Run(c.Request.Context(), client, []string{key},
			seconds, burst, now.UnixMilli(), fmt.Sprintf("%d", now.UnixNano())).Int64Slice()
		if err != nil || len(res) < 2 {
			c.Next()
			return
		}
		allowed, remaining := res[0], res[1]

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", burst))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Unix()+int64(seconds)))

		if allowed == 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": seconds,
			})
			return
		}
		c.Next()
	}
}

// HybridRateLimit uses Redis while it answers PING and the in-memory limiter
// otherwise.
func HybridRateLimit(client *redis.Client, rps int, burst int) gin.HandlerFunc {
	memory := RateLimit(rps, burst)
	shared := RedisRateLimit(client, rps, burst)
	return func(c *gin.Context) {
		if !redisx.Available(c.Request.Context(), client) {
			memory(c)
			return
		}
		shared(c)
	}
}
