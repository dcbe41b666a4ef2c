package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc payload store.
type Config struct {
	// Capacity defines the maximum number of entries that the store can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 64
	NumShards int

	// TTL is how long a payload is kept after its last write.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the store reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are swept.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config sized for a single operator session.
func DefaultConfig() Config {
	return Config{
		Capacity:           2048,
		NumShards:          64,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the optional parts of Config to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.NumShards > c.Capacity {
		return &ConfigError{Field: "NumShards", Message: "must not exceed Capacity"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycStore wraps a sturdyc client holding raw payloads.
type SturdycStore struct {
	client *sturdyc.Client[[]byte]
}

// NewSturdycStore validates cfg and initializes a sturdyc client.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycStore{client: client}, nil
}

// Get returns a copy of the payload stored under key.
func (s *SturdycStore) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), value...), true
}

// Set stores a private copy of value so callers can reuse their buffer.
func (s *SturdycStore) Set(_ context.Context, key string, value []byte) error {
	s.client.Set(key, append([]byte(nil), value...))
	return nil
}

// Delete removes a single payload.
func (s *SturdycStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// InvalidateKeys removes multiple payloads in one call.
func (s *SturdycStore) InvalidateKeys(_ context.Context, keys []string) error {
	for _, key := range keys {
		s.client.Delete(key)
	}
	return nil
}

// Keys lists the keys currently held.
func (s *SturdycStore) Keys(_ context.Context) []string {
	return s.client.ScanKeys()
}

// Size reports the number of stored payloads.
func (s *SturdycStore) Size() int {
	return s.client.Size()
}
