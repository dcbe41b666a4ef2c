package cache

import (
	"time"

	"github.com/goliatone/go-resource-client/internal/cacheinfra"
)

// Config exposes payload store options for consumers of the cache package.
type Config struct {
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"shards"`
	TTL                time.Duration `mapstructure:"ttl"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewStore constructs the default sturdyc backed Store using the provided configuration.
func NewStore(cfg Config) (Store, error) {
	return cacheinfra.NewSturdycStore(cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
