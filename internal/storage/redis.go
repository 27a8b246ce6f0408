package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/2beens/fitlog/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

const redisScanCount = 100

// RedisStore keeps every value as a plain string key "<namespace>:<key>".
type RedisStore struct {
	rdb           *redis.Client
	namespace     string
	maxValueBytes int
}

func NewRedisStore(rdb *redis.Client, namespace string) *RedisStore {
	return &RedisStore{
		rdb:           rdb,
		namespace:     namespace,
		maxValueBytes: DefaultMaxValueBytes,
	}
}

func (s *RedisStore) Get(ctx context.Context, key Key, dest any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	data, err := s.rdb.Get(ctx, namespaced(s.namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return redisError(key, err)
	}
	return decode(key, data, dest)
}

func (s *RedisStore) Set(ctx context.Context, key Key, value any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.set")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	data, err := encode(key, value, s.maxValueBytes)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, namespaced(s.namespace, key), string(data), 0).Err(); err != nil {
		return redisError(key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key Key) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.remove")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := s.rdb.Del(ctx, namespaced(s.namespace, key)).Err(); err != nil {
		return redisError(key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.clear")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	match := namespaced(s.namespace, "*")
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, redisScanCount).Result()
		if err != nil {
			return redisError("", fmt.Errorf("scan %s: %w", match, err))
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return redisError("", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func redisError(key Key, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return newError(ErrorTypeAccessDenied, key, err)
	}

	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "OOM"):
		return newError(ErrorTypeQuotaExceeded, key, err)
	case strings.HasPrefix(msg, "NOAUTH"),
		strings.HasPrefix(msg, "WRONGPASS"),
		strings.HasPrefix(msg, "NOPERM"),
		strings.HasPrefix(msg, "READONLY"):
		return newError(ErrorTypeAccessDenied, key, err)
	}
	return newError(ErrorTypeUnknown, key, err)
}
