package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is the fixed-window counter behind mid.RateLimit, shared by every
// campus-api replica through Redis. Keys live under "campuscars:rl:".
type RateLimiter struct {
	c *redis.Client
}

func NewRateLimiter(addr string) *RateLimiter {
	return &RateLimiter{
		c: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Allow считает хит в окне key и сообщает, укладывается ли он в limit.
// Номер окна уже зашит в key (см. mid.RateLimit), TTL ставится один раз на
// первом хите, чтобы окно не продлевалось под нагрузкой. Если процесс упадёт
// между INCR и EXPIRE, ключ останется без TTL, но следующее окно его уже не читает.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	k := "campuscars:rl:" + key
	n, err := rl.c.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, errors.Wrap(err, "redis ratelimit incr")
	}
	if n == 1 {
		if err := rl.c.Expire(ctx, k, window).Err(); err != nil {
			return false, 0, errors.Wrap(err, "redis ratelimit expire")
		}
	}
	return n <= limit, n, nil
}

func (rl *RateLimiter) Close() error {
	return rl.c.Close()
}
