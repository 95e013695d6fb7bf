package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter is a per-IP fixed-window limiter shared by all replicas through Redis.
type RateLimiter struct {
	rdb   *redis.Client
	route string
	limit int
	log   zerolog.Logger
	now   func() time.Time
}

// NewRateLimiter allows limit requests per minute per IP on route.
func NewRateLimiter(rdb *redis.Client, route string, limit int, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:   rdb,
		route: route,
		limit: limit,
		log:   log.With().Str("component", "rate_limiter").Str("route", route).Logger(),
		now:   time.Now,
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// Redis errors let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := config.CacheKey.RateLimitKey(rl.route, c.ClientIP(), rl.now())

		var incr *redis.IntCmd
		_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, time.Minute)
			return nil
		})
		if err != nil {
			rl.log.Warn().Err(err).Msg("Rate limit check failed, allowing request")
			c.Next()
			return
		}

		count := int(incr.Val())
		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > rl.limit {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
