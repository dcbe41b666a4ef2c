package media

import (
	"net/url"
	"strings"
)

// Config holds media settings.
type Config struct {
	BaseURL        string `mapstructure:"base_url"`
	FallbackAvatar string `mapstructure:"fallback_avatar"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	AvatarSize     int    `mapstructure:"avatar_size"`
}

// DefaultConfig returns the fallback avatar service, a 5 MiB upload limit
// and 640px avatars.
func DefaultConfig() Config {
	return Config{
		FallbackAvatar: "https://avatar.iran.liara.run/public",
		MaxUploadBytes: DefaultMaxUploadBytes,
		AvatarSize:     DefaultAvatarSize,
	}
}

// Resolver turns image paths returned by the API into absolute URLs.
type Resolver struct {
	base     string
	fallback string
}

// NewResolver creates a resolver for cfg.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		fallback: strings.TrimRight(cfg.FallbackAvatar, "/"),
	}
}

// ImageURL resolves path. Absolute http(s) URLs pass through, relative paths
// are joined onto the media base, and an empty path yields the fallback avatar.
func (r *Resolver) ImageURL(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return r.fallback
	case isAbsolute(path):
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return r.base + path
}

// VersionedImageURL resolves path and appends a ?v= cache-busting parameter.
// An empty version leaves the URL as ImageURL returns it.
func (r *Resolver) VersionedImageURL(path, version string) string {
	u := r.ImageURL(path)
	if version == "" {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "v=" + url.QueryEscape(version)
}

// AvatarURL resolves path, falling back to a generated avatar seeded by key.
func (r *Resolver) AvatarURL(path, key string) string {
	if strings.TrimSpace(path) != "" || key == "" || r.fallback == "" {
		return r.ImageURL(path)
	}
	return r.fallback + "/" + url.PathEscape(key)
}

func isAbsolute(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
