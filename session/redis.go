package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisConfig holds the connection settings for the redis backend.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

type record struct {
	Value    string    `msgpack:"v"`
	StoredAt time.Time `msgpack:"t"`
}

// RedisStore keeps values in redis as msgpack records with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore connects and pings the server before returning.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("session: failed to connect to redis: %w", err)
	}
	logger.Debug().Str("redis_address", cfg.Addr).Msg("connected to redis")

	return &RedisStore{client: rdb, prefix: cfg.KeyPrefix, ttl: cfg.TTL, logger: logger}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: get %s: %w", key, err)
	}

	var rec record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("session: decode %s: %w", key, err)
	}
	return rec.Value, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	data, err := msgpack.Marshal(record{Value: value, StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("session: delete %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
