package redis

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/tandemplan/tandem-backend/internal/config"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

// NewRedisPool builds the shared connection pool backing the refresh-token
// sessions and the ignored-conflict sets. Idle connections are verified with a
// PING before reuse; a stale connection surfacing as a session error would log
// users out for no reason.
func NewRedisPool(logger *zap.SugaredLogger) *redis.Pool {
	pool := &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 5 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", config.RedisURL())
		},
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", config.RedisURL())
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	closer.Bind(func() {
		if err := pool.Close(); err != nil {
			logger.Errorw("failed closing redis pool", "err", err)
		}
	})

	return pool
}
