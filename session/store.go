package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Keys held by the session.
const (
	KeyAccessToken = "access_token"
	KeyResetEmail  = "reset_email"
	KeyResetToken  = "reset_token"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("session: key not found")

// Store persists small string values between CLI invocations.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string        `mapstructure:"backend"`
	DSN           string        `mapstructure:"dsn"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// DefaultConfig keeps the session in a sqlite file in the working directory.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendSQLite,
		DSN:       "file:dashctl-session.db?cache=shared",
		RedisAddr: "localhost:6379",
		KeyPrefix: "dashctl:session:",
		TTL:       7 * 24 * time.Hour,
	}
}

// Open returns the store for cfg.Backend.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "session").Str("backend", cfg.Backend).Logger()

	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite, BackendPostgres:
		return OpenSQL(ctx, cfg.Backend, cfg.DSN, logger)
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		}, logger)
	default:
		return nil, fmt.Errorf("session: unknown backend %q", cfg.Backend)
	}
}

// Lookup returns the value for key, or "" when it is not set.
func Lookup(ctx context.Context, s Store, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
