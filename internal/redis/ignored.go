package redis

import (
	"context"
	"fmt"

	"github.com/gomodule/redigo/redis"
	"github.com/tandemplan/tandem-backend/internal/config"
	"go.uber.org/zap"
)

const ignoredPrefix = "conflicts:ignored:"

// IgnoredConflictsRepository holds the per-user set of conflict ids the user
// dismissed without a durable resolution. The store is intentionally volatile:
// entries expire and redis may lose them, in which case the conflict simply
// resurfaces. Callers must not treat that as an error.
type IgnoredConflictsRepository struct {
	pool   *redis.Pool
	logger *zap.SugaredLogger
}

func NewIgnoredConflictsRepository(pool *redis.Pool, logger *zap.SugaredLogger) *IgnoredConflictsRepository {
	return &IgnoredConflictsRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *IgnoredConflictsRepository) Add(ctx context.Context, userID int64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer r.closeConn(conn)

	key := fmt.Sprintf("%s%d", ignoredPrefix, userID)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, key)
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := conn.Do("SADD", args...); err != nil {
		return fmt.Errorf("SADD ignored: %w", err)
	}

	if _, err := conn.Do("EXPIRE", key, int(config.IgnoredConflictsTTL().Seconds())); err != nil {
		return fmt.Errorf("EXPIRE ignored: %w", err)
	}

	return nil
}

func (r *IgnoredConflictsRepository) Ignored(ctx context.Context, userID int64) (map[string]struct{}, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	defer r.closeConn(conn)

	ids, err := redis.Strings(conn.Do("SMEMBERS", fmt.Sprintf("%s%d", ignoredPrefix, userID)))
	if err != nil {
		return nil, fmt.Errorf("SMEMBERS ignored: %w", err)
	}

	res := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		res[id] = struct{}{}
	}

	return res, nil
}

func (r *IgnoredConflictsRepository) closeConn(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		r.logger.Errorw("failed closing redis connection", "err", err)
	}
}
