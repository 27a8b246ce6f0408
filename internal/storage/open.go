package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Options struct {
	Backend   string
	Namespace string

	// memory
	MemoryCapacity int
	// sqlite
	SQLitePath string
	// redis and postgres clients are owned by the caller
	RedisClient  *redis.Client
	PostgresPool *pgxpool.Pool

	// CacheSize enables the read-through cache when positive (bytes).
	CacheSize          int
	CacheExpireSeconds int
}

// Open builds the store for the configured backend. The returned close func
// releases what Open itself opened, it never closes caller owned clients.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}

	var (
		store   Store
		closeFn = func() error { return nil }
	)

	switch opts.Backend {
	case BackendMemory:
		store = NewMemoryStore(opts.MemoryCapacity)
	case BackendSQLite, "":
		sqliteStore, err := NewSQLiteStore(opts.SQLitePath, opts.Namespace)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		store = sqliteStore
		closeFn = sqliteStore.Close
	case BackendRedis:
		if opts.RedisClient == nil {
			return nil, nil, fmt.Errorf("redis backend selected without a redis client")
		}
		if err := opts.RedisClient.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		store = NewRedisStore(opts.RedisClient, opts.Namespace)
	case BackendPostgres:
		if opts.PostgresPool == nil {
			return nil, nil, fmt.Errorf("postgres backend selected without a db pool")
		}
		store = NewPostgresStore(opts.PostgresPool, opts.Namespace)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", opts.Backend)
	}

	if opts.CacheSize > 0 {
		store = NewCachedStore(store, opts.CacheSize, opts.CacheExpireSeconds)
	}

	return store, closeFn, nil
}
