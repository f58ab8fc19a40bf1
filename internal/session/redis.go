package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chiringuito/internal/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "chiringuito:session:"

// RedisStore keeps each session as a hash that expires ttl after its last write or touch.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logging.OrNop(logger)}
}

func (r *RedisStore) Get(ctx context.Context, sid, key string) (any, error) {
	v, err := r.client.HGet(ctx, keyPrefix+sid, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("session store: get", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("session get: %w", err)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, sid, key string, value any) error {
	hkey := keyPrefix + sid
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, hkey, key, encode(value))
		p.Expire(ctx, hkey, r.ttl)
		return nil
	})
	if err != nil {
		r.logger.Error("session store: set", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sid, key string) error {
	if err := r.client.HDel(ctx, keyPrefix+sid, key).Err(); err != nil {
		r.logger.Error("session store: delete", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// Touch restarts the expiry of an existing session. Unknown sessions are left alone.
func (r *RedisStore) Touch(ctx context.Context, sid string) error {
	if err := r.client.Expire(ctx, keyPrefix+sid, r.ttl).Err(); err != nil {
		r.logger.Error("session store: touch", zap.Error(err))
		return fmt.Errorf("session touch: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func encode(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
