// Package config loads dashctl settings from defaults, a YAML file, a .env
// file and DASHCTL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/goliatone/go-resource-client/cache"
	"github.com/goliatone/go-resource-client/media"
	"github.com/goliatone/go-resource-client/session"
	"github.com/goliatone/go-resource-client/transport"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. DASHCTL_API_BASE_URL.
	EnvPrefix = "DASHCTL"
	// FileName is the config file name looked up in the working and home directories.
	FileName = ".dashctl"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls prometheus counters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Config is the resolved application configuration.
type Config struct {
	API     transport.Config `mapstructure:"api"`
	Media   media.Config     `mapstructure:"media"`
	Cache   cache.Config     `mapstructure:"cache"`
	Session session.Config   `mapstructure:"session"`
	Log     LogConfig        `mapstructure:"log"`
	Metrics MetricsConfig    `mapstructure:"metrics"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	api := transport.DefaultConfig()
	api.BaseURL = "http://localhost:8001/api/v1"

	m := media.DefaultConfig()
	m.BaseURL = "http://localhost:8001"

	return Config{
		API:     api,
		Media:   m,
		Cache:   cache.DefaultConfig(),
		Session: session.DefaultConfig(),
		Log:     LogConfig{Level: "info", Format: FormatConsole},
		Metrics: MetricsConfig{Namespace: "dashctl"},
	}
}

// Options control where Load looks.
type Options struct {
	// File is an explicit config file. When empty, FileName is searched in
	// SearchPaths.
	File        string
	SearchPaths []string
	// EnvFile is loaded into the process environment before reading
	// variables. Missing files are ignored.
	EnvFile string
}

// Load resolves defaults, config file, .env and environment, then validates.
func Load(opts Options) (Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{".", "$HOME"}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"api.base_url":      d.API.BaseURL,
		"api.timeout":       d.API.Timeout,
		"api.retries":       d.API.Retries,
		"api.retry_backoff": d.API.RetryBackoff,
		"api.user_agent":    d.API.UserAgent,

		"media.base_url":         d.Media.BaseURL,
		"media.fallback_avatar":  d.Media.FallbackAvatar,
		"media.max_upload_bytes": d.Media.MaxUploadBytes,
		"media.avatar_size":      d.Media.AvatarSize,

		"cache.capacity":            d.Cache.Capacity,
		"cache.shards":              d.Cache.NumShards,
		"cache.ttl":                 d.Cache.TTL,
		"cache.eviction_percentage": d.Cache.EvictionPercentage,
		"cache.eviction_interval":   d.Cache.EvictionInterval,

		"session.backend":        d.Session.Backend,
		"session.dsn":            d.Session.DSN,
		"session.redis_addr":     d.Session.RedisAddr,
		"session.redis_password": d.Session.RedisPassword,
		"session.redis_db":       d.Session.RedisDB,
		"session.key_prefix":     d.Session.KeyPrefix,
		"session.ttl":            d.Session.TTL,

		"log.level":  d.Log.Level,
		"log.format": d.Log.Format,

		"metrics.enabled":   d.Metrics.Enabled,
		"metrics.namespace": d.Metrics.Namespace,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Validate checks the values Load cannot coerce.
func (c Config) Validate() error {
	if err := validateURL("api.base_url", c.API.BaseURL, true); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "api.timeout", Message: "must be greater than 0"}
	}
	if c.API.Retries < 0 {
		return &ConfigError{Field: "api.retries", Message: "must be non-negative"}
	}
	if c.API.RetryBackoff < 0 {
		return &ConfigError{Field: "api.retry_backoff", Message: "must be non-negative"}
	}

	if err := validateURL("media.base_url", c.Media.BaseURL, false); err != nil {
		return err
	}
	if c.Media.MaxUploadBytes <= 0 {
		return &ConfigError{Field: "media.max_upload_bytes", Message: "must be greater than 0"}
	}
	if c.Media.AvatarSize < 0 {
		return &ConfigError{Field: "media.avatar_size", Message: "must be non-negative"}
	}

	if err := c.Cache.Validate(); err != nil {
		return &ConfigError{Field: "cache", Message: err.Error()}
	}

	switch c.Session.Backend {
	case session.BackendMemory, session.BackendSQLite, session.BackendPostgres:
	case session.BackendRedis:
		if c.Session.RedisAddr == "" {
			return &ConfigError{Field: "session.redis_addr", Message: "is required for the redis backend"}
		}
	default:
		return &ConfigError{Field: "session.backend", Message: fmt.Sprintf("unknown backend %q", c.Session.Backend)}
	}
	if (c.Session.Backend == session.BackendSQLite || c.Session.Backend == session.BackendPostgres) && c.Session.DSN == "" {
		return &ConfigError{Field: "session.dsn", Message: "is required for the " + c.Session.Backend + " backend"}
	}
	if c.Session.TTL < 0 {
		return &ConfigError{Field: "session.ttl", Message: "must be non-negative"}
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return &ConfigError{Field: "log.level", Message: err.Error()}
	}
	if c.Log.Format != FormatConsole && c.Log.Format != FormatJSON {
		return &ConfigError{Field: "log.format", Message: "must be console or json"}
	}
	return nil
}

func validateURL(field, raw string, required bool) error {
	if raw == "" {
		if required {
			return &ConfigError{Field: field, Message: "is required"}
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Field: field, Message: "must be an absolute http(s) URL"}
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
