package cache

import "context"

// KeySerializer builds a cache key from a tag, a request path and arbitrary params.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(tag, path string, params ...any) string
}

// Store holds raw response payloads by key. Entry metadata such as tags,
// staleness and subscriber counts is tracked by the resource client; the
// store only has to keep bytes around until TTL or capacity eviction.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	InvalidateKeys(ctx context.Context, keys []string) error
	Keys(ctx context.Context) []string
	Size() int
}
