package resourceclient

import (
	"sync"
	"time"
)

// Status is the load state of a cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// EntryInfo is a point-in-time view of an entry.
type EntryInfo struct {
	Key         string
	Tags        []Tag
	Status      Status
	Stale       bool
	Subscribers int
	Err         error
	UpdatedAt   time.Time
}

// entry is the metadata for one cache key. The payload itself lives in the
// cache store; generation increments on every invalidation so a fetch that
// started earlier can tell it has been superseded.
type entry struct {
	mu          sync.Mutex
	key         string
	query       Query
	tags        []Tag
	status      Status
	httpStatus  int
	stale       bool
	generation  uint64
	loadingGen  uint64
	settled     Status
	subscribers int
	lastErr     error
	updatedAt   time.Time
}

func newEntry(key string, q Query, tags []Tag) *entry {
	return &entry{
		key:    key,
		query:  q,
		tags:   tags,
		status: StatusIdle,
	}
}

// fresh reports whether the entry can be served from the store. Callers hold mu.
func (e *entry) fresh() bool {
	return e.status == StatusSuccess && !e.stale
}

// addTags merges extra tags. Callers hold mu.
func (e *entry) addTags(tags []Tag) {
outer:
	for _, t := range tags {
		for _, have := range e.tags {
			if have == t {
				continue outer
			}
		}
		e.tags = append(e.tags, t)
	}
}

// matches returns the first tag in set carried by the entry. Callers hold mu.
func (e *entry) matches(set map[Tag]struct{}) (Tag, bool) {
	for _, t := range e.tags {
		if _, ok := set[t]; ok {
			return t, true
		}
	}
	return "", false
}

func (e *entry) snapshot() EntryInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EntryInfo{
		Key:         e.key,
		Tags:        append([]Tag(nil), e.tags...),
		Status:      e.status,
		Stale:       e.stale,
		Subscribers: e.subscribers,
		Err:         e.lastErr,
		UpdatedAt:   e.updatedAt,
	}
}
