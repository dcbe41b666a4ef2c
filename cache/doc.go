// Package cache provides the payload store and key serialization used by the
// resource client.
//
// # Overview
//
// This package exports two interfaces and their default implementations:
//
//   - Store: a bounded, TTL aware byte store backed by sturdyc
//   - KeySerializer: builds stable cache keys from a tag, a path and request params
//
// The store is deliberately dumb. It keeps the last successful response body
// for a key and forgets it on TTL or capacity pressure. Tags, staleness and
// subscriber bookkeeping belong to the resourceclient package.
//
// # Basic Usage
//
//	store, err := cache.NewStore(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	keys := cache.NewDefaultKeySerializer()
//	key := keys.SerializeKey("blog", "/blogs", url.Values{"page": {"2"}})
//	// blog::/blogs::map[1]:{page=slice[1]:{2}}
//
// # Key Structure
//
// Keys always start with TagPrefix(tag). Params are serialized with
// reflection:
//
//   - Basic types: direct string representation
//   - Slices/arrays: recursive serialization of elements
//   - Maps (including url.Values): sorted key=value pairs
//   - Structs: exported fields with name:value pairs
//   - Anything else: JSON fallback
//
// Nil and empty params are skipped, so Read("/blogs") and Read("/blogs", url.Values{})
// resolve to the same entry. Params segments longer than MaxParamsLength are
// replaced by an xxhash digest.
package cache
