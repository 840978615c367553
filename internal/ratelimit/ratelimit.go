package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is a fixed-window counter stored in Redis.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// New returns a limiter allowing limit hits per window for each key.
func New(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// NewClient parses a redis URL ("redis://host:6379/0") or a bare "host:port".
func NewClient(url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	return redis.NewClient(opts)
}

// Allow records a hit for resource/id and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, resource, id string) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(l.limit), nil
}

// Middleware enforces the limit per authenticated user, or per client IP.
// When Redis is unreachable the request is let through.
func (l *Limiter) Middleware(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if uid, ok := c.Get("userID"); ok {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = "ip:" + c.ClientIP()
		}

		allowed, err := l.Allow(c.Request.Context(), resource, id)
		if err != nil {
			zap.L().Warn("rate limit unavailable, allowing request", zap.String("resource", resource), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Trop de messages, réessayez plus tard."})
			return
		}
		c.Next()
	}
}
