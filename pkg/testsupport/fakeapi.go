package testsupport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-resource-client/cache"
	"github.com/goliatone/go-resource-client/resourceclient"
	"github.com/goliatone/go-resource-client/transport"
	"github.com/rs/zerolog"
)

// APIPrefix is the path prefix the fake API is mounted under.
const APIPrefix = "/api/v1"

// RecordedRequest is a request the fake API received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// FakeAPI is an in-process stand-in for the admin API. Routes are matched on
// exact method and path; unmatched requests get a 404.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewFakeAPI starts a fake API that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{routes: make(map[string]http.HandlerFunc)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the API root to configure clients with.
func (f *FakeAPI) BaseURL() string {
	return f.Server.URL + APIPrefix
}

// Handle registers h for method and path.
func (f *FakeAPI) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

// Reply registers a fixed response.
func (f *FakeAPI) Reply(method, path string, status int, body []byte) {
	f.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	})
}

// Calls returns how many requests hit method and path.
func (f *FakeAPI) Calls(method, path string) int {
	return len(f.Requests(method, path))
}

// Requests returns the recorded requests for method and path.
func (f *FakeAPI) Requests(method, path string) []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []RecordedRequest
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, APIPrefix)
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := f.routes[r.Method+" "+path]
	f.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"route not found"}`)
		return
	}

	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

// NewClient builds a resource client against the fake API with an
// in-memory store.
func NewClient(t *testing.T, api *FakeAPI, opts ...transport.Option) *resourceclient.Client {
	t.Helper()

	cfg := transport.DefaultConfig()
	cfg.BaseURL = api.BaseURL()
	cfg.Timeout = 5 * time.Second

	tr, err := transport.NewFastHTTP(cfg, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}

	store, err := cache.NewStore(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create cache store: %v", err)
	}

	client, err := resourceclient.New(tr, store, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create resource client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
