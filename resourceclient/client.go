package resourceclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goliatone/go-resource-client/cache"
	"github.com/goliatone/go-resource-client/transport"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Query identifies a cached read: the tag it provides, the path and params.
type Query struct {
	Tag    Tag
	Path   string
	Params url.Values
}

// Mutation is a write. Invalidates lists the tags whose entries go stale
// once the write succeeds.
type Mutation struct {
	Method      string
	Path        string
	Params      url.Values
	Body        any
	Form        *transport.Form
	Headers     map[string]string
	Invalidates []Tag
}

// Result is the raw payload of a read or write.
type Result struct {
	Key    string
	Body   []byte
	Status int
	Cached bool
}

// Option customises a Client.
type Option func(*Client)

// WithMetrics records hits, misses and failures on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client is a tag-invalidated request cache in front of a Transport.
type Client struct {
	transport transport.Transport
	store     cache.Store
	keys      cache.KeySerializer
	logger    zerolog.Logger
	metrics   *Metrics

	entries *xsync.MapOf[string, *entry]
	flight  singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New creates a client. A nil keys argument selects the default serializer.
func New(t transport.Transport, store cache.Store, keys cache.KeySerializer, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if t == nil {
		return nil, errors.New("resourceclient: transport is required")
	}
	if store == nil {
		return nil, errors.New("resourceclient: cache store is required")
	}
	if keys == nil {
		keys = cache.NewDefaultKeySerializer()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		transport: t,
		store:     store,
		keys:      keys,
		logger:    logger.With().Str("component", "resourceclient").Logger(),
		entries:   xsync.NewMapOf[string, *entry](),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Key returns the cache key for q.
func (c *Client) Key(q Query) string {
	return c.keys.SerializeKey(string(q.Tag.Normalize()), q.Path, q.Params)
}

// Read returns the payload for q, from the cache when the entry is fresh.
// Concurrent reads of an unresolved key share one request.
func (c *Client) Read(ctx context.Context, q Query) (Result, error) {
	if c.isClosed() {
		return Result{}, ErrClosed
	}

	e := c.register(ctx, q)
	tag := q.Tag.Normalize()

	e.mu.Lock()
	fresh := e.fresh()
	status := e.httpStatus
	e.mu.Unlock()

	if fresh {
		if body, ok := c.store.Get(ctx, e.key); ok {
			c.metrics.hit(tag)
			c.logger.Debug().Str("key", e.key).Msg("cache hit")
			return Result{Key: e.key, Body: body, Status: status, Cached: true}, nil
		}
	}

	c.metrics.miss(tag)
	return c.fetch(ctx, e)
}

// Write sends m and, on success, invalidates m.Invalidates. A failed write
// leaves the cache untouched.
func (c *Client) Write(ctx context.Context, m Mutation) (Result, error) {
	if c.isClosed() {
		return Result{}, ErrClosed
	}

	method := m.Method
	if method == "" {
		method = http.MethodPost
	}

	resp, err := c.transport.Do(ctx, &transport.Request{
		Method:  method,
		Path:    m.Path,
		Query:   m.Params,
		Body:    m.Body,
		Form:    m.Form,
		Headers: m.Headers,
	})
	if err != nil {
		c.metrics.writeError(method)
		c.logger.Debug().Err(err).Str("method", method).Str("path", m.Path).Msg("write failed")
		return Result{}, err
	}

	c.Invalidate(ctx, m.Invalidates...)
	return Result{Body: resp.Body, Status: resp.Status}, nil
}

// Invalidate marks every entry carrying one of tags stale and returns how
// many were affected. Subscribed entries are refetched in the background.
func (c *Client) Invalidate(ctx context.Context, tags ...Tag) int {
	normalized := normalizeTags(tags)
	if len(normalized) == 0 {
		return 0
	}
	set := make(map[Tag]struct{}, len(normalized))
	for _, t := range normalized {
		set[t] = struct{}{}
	}

	var refetch []*entry
	count := 0
	c.entries.Range(func(key string, e *entry) bool {
		e.mu.Lock()
		tag, ok := e.matches(set)
		if !ok {
			e.mu.Unlock()
			return true
		}
		e.generation++
		e.stale = true
		subscribed := e.subscribers > 0
		e.mu.Unlock()

		c.flight.Forget(key)
		c.metrics.invalidated(tag, 1)
		count++
		if subscribed {
			refetch = append(refetch, e)
		}
		return true
	})

	c.logger.Debug().
		Interface("tags", normalized).
		Int("entries", count).
		Int("refetch", len(refetch)).
		Msg("invalidated")

	for _, e := range refetch {
		c.refetch(e)
	}
	return count
}

// Subscribe registers interest in q. While at least one subscription is
// open, invalidating q's tag triggers an immediate refetch.
func (c *Client) Subscribe(q Query) *Subscription {
	key := c.Key(q)
	tags := normalizeTags([]Tag{q.Tag})

	c.entries.Compute(key, func(e *entry, loaded bool) (*entry, bool) {
		if !loaded {
			e = newEntry(key, q, tags)
		}
		e.mu.Lock()
		e.subscribers++
		e.mu.Unlock()
		return e, false
	})

	return &Subscription{client: c, query: q, key: key}
}

// Unsubscribe drops one subscription for q. The count never goes below zero;
// an entry left stale with no subscribers is disposed.
func (c *Client) Unsubscribe(q Query) {
	c.unsubscribe(c.Key(q))
}

func (c *Client) unsubscribe(key string) {
	disposed := false
	c.entries.Compute(key, func(e *entry, loaded bool) (*entry, bool) {
		if !loaded {
			return e, true
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.subscribers > 0 {
			e.subscribers--
		}
		if e.subscribers == 0 && e.stale {
			e.generation++
			disposed = true
			return e, true
		}
		return e, false
	})

	if disposed {
		c.flight.Forget(key)
		if err := c.store.Delete(c.ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to drop disposed entry")
		}
	}
}

// Entry returns a snapshot of q's entry.
func (c *Client) Entry(q Query) (EntryInfo, bool) {
	e, ok := c.entries.Load(c.Key(q))
	if !ok {
		return EntryInfo{}, false
	}
	return e.snapshot(), true
}

// Entries returns snapshots of every registered entry.
func (c *Client) Entries() []EntryInfo {
	out := make([]EntryInfo, 0, c.entries.Size())
	c.entries.Range(func(_ string, e *entry) bool {
		out = append(out, e.snapshot())
		return true
	})
	return out
}

// Stats summarises the client's cache.
type Stats struct {
	Entries  int
	Payloads int
}

// Stats reports how many entries are tracked and how many payloads the
// store holds.
func (c *Client) Stats() Stats {
	return Stats{Entries: c.entries.Size(), Payloads: c.store.Size()}
}

// Prune disposes unsubscribed entries that are stale or whose payload the
// store has already evicted, and drops payloads no entry refers to.
func (c *Client) Prune(ctx context.Context) int {
	var candidates []string
	c.entries.Range(func(key string, _ *entry) bool {
		candidates = append(candidates, key)
		return true
	})

	var drop []string
	for _, key := range candidates {
		_, present := c.store.Get(ctx, key)
		c.entries.Compute(key, func(e *entry, loaded bool) (*entry, bool) {
			if !loaded {
				return e, true
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.subscribers > 0 || e.status == StatusLoading {
				return e, false
			}
			if e.stale || !present {
				e.generation++
				drop = append(drop, key)
				return e, true
			}
			return e, false
		})
	}
	pruned := len(drop)

	for _, key := range c.store.Keys(ctx) {
		if _, ok := c.entries.Load(key); !ok {
			drop = append(drop, key)
		}
	}
	if len(drop) > 0 {
		if err := c.store.InvalidateKeys(ctx, drop); err != nil {
			c.logger.Warn().Err(err).Int("keys", len(drop)).Msg("failed to drop pruned payloads")
		}
	}
	return pruned
}

// Reset drops every entry and every stored payload.
func (c *Client) Reset(ctx context.Context) error {
	c.entries.Range(func(key string, e *entry) bool {
		e.mu.Lock()
		e.generation++
		e.mu.Unlock()
		c.flight.Forget(key)
		return true
	})
	c.entries.Clear()

	keys := c.store.Keys(ctx)
	if len(keys) == 0 {
		return nil
	}
	return c.store.InvalidateKeys(ctx, keys)
}

// Close stops background refetches and waits for them to finish.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) register(ctx context.Context, q Query) *entry {
	key := c.Key(q)
	tags := normalizeTags(append([]Tag{q.Tag}, tagsFromContext(ctx)...))

	e, loaded := c.entries.LoadOrCompute(key, func() *entry {
		return newEntry(key, q, tags)
	})
	if loaded && len(tags) > 1 {
		e.mu.Lock()
		e.addTags(tags)
		e.mu.Unlock()
	}
	return e
}

// fetch joins or starts the in-flight request for e. The request runs on a
// context detached from the caller so one caller giving up does not fail the
// others; it is still cancelled when the client closes.
func (c *Client) fetch(ctx context.Context, e *entry) (Result, error) {
	ch := c.flight.DoChan(e.key, func() (any, error) {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		stop := context.AfterFunc(c.ctx, cancel)
		defer stop()
		return c.load(fctx, e)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Result{Key: e.key}, res.Err
		}
		return res.Val.(Result), nil
	case <-ctx.Done():
		return Result{Key: e.key}, &APIError{Kind: KindNetwork, Message: "request cancelled", Err: ctx.Err()}
	}
}

// load performs the GET. The payload is stored only when no invalidation
// happened since the request started, so the most recently initiated fetch
// is the one that lands.
func (c *Client) load(ctx context.Context, e *entry) (Result, error) {
	e.mu.Lock()
	gen := e.generation
	q := e.query
	tag := q.Tag.Normalize()
	if e.status != StatusLoading {
		e.settled = e.status
	}
	e.status = StatusLoading
	e.loadingGen = gen
	e.mu.Unlock()

	c.metrics.fetch(tag)
	start := time.Now()
	resp, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		Path:   q.Path,
		Query:  q.Params,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.generation != gen {
		c.logger.Debug().Str("key", e.key).Msg("discarding superseded fetch")
		if e.status == StatusLoading && e.loadingGen == gen {
			e.status = e.settled
		}
		if err != nil {
			return Result{}, err
		}
		return Result{Key: e.key, Body: resp.Body, Status: resp.Status}, nil
	}

	if err != nil {
		c.metrics.fetchError(tag)
		e.status = StatusError
		e.lastErr = err
		c.logger.Debug().Err(err).Str("key", e.key).Msg("fetch failed")
		return Result{}, err
	}

	if serr := c.store.Set(ctx, e.key, resp.Body); serr != nil {
		c.logger.Warn().Err(serr).Str("key", e.key).Msg("failed to store payload")
	}
	e.status = StatusSuccess
	e.httpStatus = resp.Status
	e.stale = false
	e.lastErr = nil
	e.updatedAt = time.Now()

	c.logger.Debug().
		Str("key", e.key).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")

	return Result{Key: e.key, Body: resp.Body, Status: resp.Status}, nil
}

func (c *Client) refetch(e *entry) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.wg.Add(1)
	c.mu.RUnlock()

	go func() {
		defer c.wg.Done()
		if _, err := c.fetch(c.ctx, e); err != nil {
			c.logger.Warn().Err(err).Str("key", e.key).Msg("background refetch failed")
		}
	}()
}
