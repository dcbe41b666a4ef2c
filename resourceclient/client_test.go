package resourceclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-resource-client/cache"
	"github.com/goliatone/go-resource-client/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records every request and answers through handler.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []transport.Request
	handler func(req *transport.Request, n int) (*transport.Response, error)
}

func (f *fakeTransport) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, *req)
	n := 0
	for _, c := range f.calls {
		if c.Method == req.Method && c.Path == req.Path {
			n++
		}
	}
	handler := f.handler
	f.mu.Unlock()

	if handler == nil {
		return &transport.Response{Status: http.StatusOK, Body: []byte(fmt.Sprintf("%s#%d", req.Path, n))}, nil
	}
	return handler(req, n)
}

func (f *fakeTransport) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func newTestClient(t *testing.T, tr transport.Transport, opts ...Option) *Client {
	t.Helper()
	store, err := cache.NewStore(cache.DefaultConfig())
	require.NoError(t, err)

	c, err := New(tr, store, nil, zerolog.Nop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

var (
	blogsQuery  = Query{Tag: "blog", Path: "/blogs"}
	adminsQuery = Query{Tag: "admin", Path: "/admin/all-admins"}
)

func TestNew_RequiresDependencies(t *testing.T) {
	store, err := cache.NewStore(cache.DefaultConfig())
	require.NoError(t, err)

	_, err = New(nil, store, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(&fakeTransport{}, nil, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestRead_ServesFreshEntryFromCache(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)
	ctx := context.Background()

	first, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "/blogs#1", string(first.Body))

	second, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "/blogs#1", string(second.Body))
	assert.Equal(t, http.StatusOK, second.Status)

	assert.Equal(t, 1, tr.count(http.MethodGet, "/blogs"))

	info, ok := c.Entry(blogsQuery)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, info.Status)
	assert.False(t, info.Stale)
	assert.Equal(t, []Tag{"blog"}, info.Tags)
}

func TestRead_DifferentParamsNeverCollide(t *testing.T) {
	tr := &fakeTransport{handler: func(req *transport.Request, n int) (*transport.Response, error) {
		return &transport.Response{Status: http.StatusOK, Body: []byte(req.Query.Encode())}, nil
	}}
	c := newTestClient(t, tr)
	ctx := context.Background()

	page1 := Query{Tag: "appointments", Path: "/appointments", Params: url.Values{"page": {"1"}}}
	page2 := Query{Tag: "appointments", Path: "/appointments", Params: url.Values{"page": {"2"}}}

	r1, err := c.Read(ctx, page1)
	require.NoError(t, err)
	r2, err := c.Read(ctx, page2)
	require.NoError(t, err)

	assert.NotEqual(t, r1.Key, r2.Key)
	assert.Equal(t, "page=1", string(r1.Body))
	assert.Equal(t, "page=2", string(r2.Body))
	assert.Equal(t, 2, tr.count(http.MethodGet, "/appointments"))
}

func TestRead_ConcurrentReadsShareOneRequest(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	tr := &fakeTransport{handler: func(req *transport.Request, n int) (*transport.Response, error) {
		once.Do(func() { close(entered) })
		<-release
		return &transport.Response{Status: http.StatusOK, Body: []byte(`{"data":[]}`)}, nil
	}}
	c := newTestClient(t, tr)

	const readers = 10
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Read(context.Background(), blogsQuery)
			if err == nil && string(res.Body) != `{"data":[]}` {
				err = fmt.Errorf("unexpected body %q", res.Body)
			}
			errs <- err
		}()
	}

	<-entered
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, tr.count(http.MethodGet, "/blogs"))
}

func TestWrite_InvalidatesProvidedTag(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)
	ctx := context.Background()

	_, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	_, err = c.Read(ctx, adminsQuery)
	require.NoError(t, err)

	_, err = c.Write(ctx, Mutation{
		Method:      http.MethodDelete,
		Path:        "/blogs/1",
		Invalidates: []Tag{"blog"},
	})
	require.NoError(t, err)

	blogs, _ := c.Entry(blogsQuery)
	admins, _ := c.Entry(adminsQuery)
	assert.True(t, blogs.Stale)
	assert.False(t, admins.Stale)

	res, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, "/blogs#2", string(res.Body))

	res, err = c.Read(ctx, adminsQuery)
	require.NoError(t, err)
	assert.True(t, res.Cached)

	assert.Equal(t, 2, tr.count(http.MethodGet, "/blogs"))
	assert.Equal(t, 1, tr.count(http.MethodGet, "/admin/all-admins"))
}

func TestWrite_DefaultsToPost(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)

	_, err := c.Write(context.Background(), Mutation{Path: "/blogs"})
	require.NoError(t, err)
	assert.Equal(t, 1, tr.count(http.MethodPost, "/blogs"))
}

func TestWrite_FailureLeavesCacheUntouched(t *testing.T) {
	tr := &fakeTransport{handler: func(req *transport.Request, n int) (*transport.Response, error) {
		if req.Method != http.MethodGet {
			return nil, &transport.Error{Kind: transport.KindStatus, Status: http.StatusBadRequest, Message: "Title is required"}
		}
		return &transport.Response{Status: http.StatusOK, Body: []byte("blogs")}, nil
	}}
	c := newTestClient(t, tr)
	ctx := context.Background()

	_, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)

	_, err = c.Write(ctx, Mutation{Method: http.MethodPost, Path: "/blogs", Invalidates: []Tag{"blog"}})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Title is required", apiErr.Message)

	info, _ := c.Entry(blogsQuery)
	assert.False(t, info.Stale)

	res, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, tr.count(http.MethodGet, "/blogs"))
}

func TestRead_FailureRecordsError(t *testing.T) {
	tr := &fakeTransport{handler: func(req *transport.Request, n int) (*transport.Response, error) {
		if n == 1 {
			return nil, &transport.Error{Kind: transport.KindStatus, Status: http.StatusNotFound, Message: "not found"}
		}
		return &transport.Response{Status: http.StatusOK, Body: []byte("ok")}, nil
	}}
	c := newTestClient(t, tr)
	ctx := context.Background()

	_, err := c.Read(ctx, blogsQuery)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	info, _ := c.Entry(blogsQuery)
	assert.Equal(t, StatusError, info.Status)
	assert.Error(t, info.Err)

	res, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Body))

	info, _ = c.Entry(blogsQuery)
	assert.Equal(t, StatusSuccess, info.Status)
	assert.NoError(t, info.Err)
}

func TestInvalidate_NormalizesTags(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	ctx := context.Background()

	terms := Query{Tag: "termsAndConditions", Path: "/legal-docs/terms-conditions"}
	_, err := c.Read(ctx, terms)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Invalidate(ctx, "terms_and_conditions"))
	assert.Equal(t, 0, c.Invalidate(ctx, "privacy"))
	assert.Equal(t, 0, c.Invalidate(ctx))
}

func TestSubscribe_RefetchesStaleEntryImmediately(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)
	ctx := context.Background()

	sub := c.Subscribe(blogsQuery)
	defer sub.Close()

	_, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)

	c.Invalidate(ctx, "blog")

	require.Eventually(t, func() bool {
		info, ok := c.Entry(blogsQuery)
		return ok && info.Status == StatusSuccess && !info.Stale
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, tr.count(http.MethodGet, "/blogs"))

	res, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "/blogs#2", string(res.Body))
}

func TestUnsubscribe_CountNeverNegative(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})

	c.Unsubscribe(blogsQuery)
	_, ok := c.Entry(blogsQuery)
	assert.False(t, ok)

	sub := c.Subscribe(blogsQuery)
	c.Subscribe(blogsQuery)

	info, _ := c.Entry(blogsQuery)
	assert.Equal(t, 2, info.Subscribers)

	sub.Close()
	sub.Close()
	info, _ = c.Entry(blogsQuery)
	assert.Equal(t, 1, info.Subscribers)

	c.Unsubscribe(blogsQuery)
	c.Unsubscribe(blogsQuery)
	info, ok = c.Entry(blogsQuery)
	require.True(t, ok)
	assert.Equal(t, 0, info.Subscribers)
}

func TestUnsubscribe_DisposesStaleEntry(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)
	ctx := context.Background()

	_, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	c.Invalidate(ctx, "blog")

	sub := c.Subscribe(blogsQuery)
	sub.Close()

	_, ok := c.Entry(blogsQuery)
	assert.False(t, ok)

	res, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestRead_SupersededFetchIsNotStored(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	tr := &fakeTransport{handler: func(req *transport.Request, n int) (*transport.Response, error) {
		if n == 1 {
			close(started)
			<-release
			return &transport.Response{Status: http.StatusOK, Body: []byte("old")}, nil
		}
		return &transport.Response{Status: http.StatusOK, Body: []byte("new")}, nil
	}}
	c := newTestClient(t, tr)
	ctx := context.Background()

	oldResult := make(chan Result, 1)
	go func() {
		res, _ := c.Read(ctx, blogsQuery)
		oldResult <- res
	}()
	<-started

	c.Invalidate(ctx, "blog")

	res, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.Equal(t, "new", string(res.Body))

	close(release)
	assert.Equal(t, "old", string((<-oldResult).Body))

	res, err = c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "new", string(res.Body))
}

func TestRead_SupersededFetchSettlesEntry(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	tr := &fakeTransport{handler: func(req *transport.Request, n int) (*transport.Response, error) {
		close(started)
		<-release
		return &transport.Response{Status: http.StatusOK, Body: []byte("old")}, nil
	}}
	c := newTestClient(t, tr)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Read(ctx, blogsQuery)
		done <- err
	}()
	<-started

	info, ok := c.Entry(blogsQuery)
	require.True(t, ok)
	assert.Equal(t, StatusLoading, info.Status)

	c.Invalidate(ctx, "blog")
	close(release)
	require.NoError(t, <-done)

	info, ok = c.Entry(blogsQuery)
	require.True(t, ok)
	assert.Equal(t, StatusIdle, info.Status)
	assert.True(t, info.Stale)

	assert.Equal(t, 1, c.Prune(ctx))
	_, ok = c.Entry(blogsQuery)
	assert.False(t, ok)
}

func TestRead_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	tr := &fakeTransport{handler: func(req *transport.Request, n int) (*transport.Response, error) {
		once.Do(func() { close(started) })
		<-release
		return &transport.Response{Status: http.StatusOK, Body: []byte("late")}, nil
	}}
	c := newTestClient(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Read(ctx, blogsQuery)
		done <- err
	}()

	<-started
	cancel()
	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		info, _ := c.Entry(blogsQuery)
		return info.Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)

	res, err := c.Read(context.Background(), blogsQuery)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "late", string(res.Body))
}

func TestWithCacheTags_RegistersExtraTags(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)

	ctx := WithCacheTags(context.Background(), "profile")
	_, err := c.Read(ctx, adminsQuery)
	require.NoError(t, err)

	info, _ := c.Entry(adminsQuery)
	assert.ElementsMatch(t, []Tag{"admin", "profile"}, info.Tags)

	assert.Equal(t, 1, c.Invalidate(context.Background(), "profile"))
}

func TestPrune_DropsUnsubscribedStaleEntries(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	ctx := context.Background()

	_, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	_, err = c.Read(ctx, adminsQuery)
	require.NoError(t, err)

	sub := c.Subscribe(adminsQuery)
	defer sub.Close()

	c.Invalidate(ctx, "blog")
	assert.Equal(t, 1, c.Prune(ctx))

	_, ok := c.Entry(blogsQuery)
	assert.False(t, ok)
	_, ok = c.Entry(adminsQuery)
	assert.True(t, ok)
	assert.Equal(t, Stats{Entries: 1, Payloads: 1}, c.Stats())
}

func TestReset_DropsEverything(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)
	ctx := context.Background()

	_, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.Equal(t, Stats{Entries: 1, Payloads: 1}, c.Stats())
	require.NoError(t, c.Reset(ctx))

	assert.Empty(t, c.Entries())
	assert.Equal(t, Stats{}, c.Stats())

	res, err := c.Read(ctx, blogsQuery)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, tr.count(http.MethodGet, "/blogs"))
}

func TestClose_RejectsFurtherCalls(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Read(context.Background(), blogsQuery)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = c.Write(context.Background(), Mutation{Path: "/blogs"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMetrics_CountHitsAndMisses(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "test")
	require.NoError(t, err)

	tr := &fakeTransport{handler: func(req *transport.Request, n int) (*transport.Response, error) {
		if req.Method == http.MethodPatch {
			return nil, &transport.Error{Kind: transport.KindStatus, Status: http.StatusInternalServerError}
		}
		return &transport.Response{Status: http.StatusOK, Body: []byte("ok")}, nil
	}}
	c := newTestClient(t, tr, WithMetrics(m))
	ctx := context.Background()

	_, _ = c.Read(ctx, blogsQuery)
	_, _ = c.Read(ctx, blogsQuery)
	_, _ = c.Write(ctx, Mutation{Method: http.MethodPatch, Path: "/blogs/1"})
	c.Invalidate(ctx, "blog")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits.WithLabelValues("blog")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses.WithLabelValues("blog")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("blog")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writeErrors.WithLabelValues(http.MethodPatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidations.WithLabelValues("blog")))

	_, err = NewMetrics(reg, "test")
	assert.Error(t, err, "registering twice should fail")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.hit("blog")
	m.miss("blog")
	m.fetch("blog")
	m.fetchError("blog")
	m.invalidated("blog", 3)
	m.writeError(http.MethodPost)
}
