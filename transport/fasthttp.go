package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Config holds the settings for the fasthttp transport.
type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Retries      int           `mapstructure:"retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// DefaultConfig returns a Config with a 15s timeout and no retries.
func DefaultConfig() Config {
	return Config{
		Timeout:      15 * time.Second,
		RetryBackoff: 500 * time.Millisecond,
		UserAgent:    "go-resource-client",
	}
}

// TokenFunc supplies the bearer token for a request. An empty token means
// the request goes out without an Authorization header.
type TokenFunc func(ctx context.Context) (string, error)

// Option customises a FastHTTP transport.
type Option func(*FastHTTP)

// WithTokenFunc sets the bearer token source.
func WithTokenFunc(fn TokenFunc) Option {
	return func(t *FastHTTP) { t.token = fn }
}

// WithClient replaces the underlying fasthttp client.
func WithClient(c *fasthttp.Client) Option {
	return func(t *FastHTTP) { t.client = c }
}

// FastHTTP is a Transport backed by fasthttp.
type FastHTTP struct {
	client  *fasthttp.Client
	cfg     Config
	baseURL string
	token   TokenFunc
	logger  zerolog.Logger
}

// NewFastHTTP builds a transport for cfg.BaseURL.
func NewFastHTTP(cfg Config, logger zerolog.Logger, opts ...Option) (*FastHTTP, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("transport: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	t := &FastHTTP{
		client: &fasthttp.Client{
			Name:                     cfg.UserAgent,
			ReadTimeout:              cfg.Timeout,
			WriteTimeout:             cfg.Timeout,
			NoDefaultUserAgentHeader: cfg.UserAgent == "",
		},
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger.With().Str("component", "transport").Logger(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

type roundTrip struct {
	status int
	body   []byte
	err    error
}

// Do executes req. GET requests are retried on network errors and 5xx up to
// Config.Retries times with linear backoff; other methods are sent once.
func (t *FastHTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "request cancelled", Err: err}
	}

	payload, contentType, err := encodeBody(req)
	if err != nil {
		return nil, &Error{Kind: KindEncode, Message: err.Error(), Err: err}
	}

	headers, err := t.headers(ctx, req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "failed to resolve token", Err: err}
	}
	requestID := headers["X-Request-ID"]

	retries := 0
	if req.Method == http.MethodGet {
		retries = t.cfg.Retries
	}

	uri := t.uri(req)
	for attempt := 0; ; attempt++ {
		start := time.Now()
		res := t.roundTrip(ctx, req.Method, uri, headers, payload, contentType)

		t.logger.Debug().
			Str("request_id", requestID).
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", res.status).
			Int("attempt", attempt+1).
			Dur("elapsed", time.Since(start)).
			Msg("request completed")

		if res.err == nil && res.status >= 200 && res.status < 300 {
			return &Response{Status: res.status, Body: res.body, RequestID: requestID}, nil
		}

		failure := t.failure(res)
		if attempt >= retries || !retryable(failure) {
			return nil, failure
		}

		backoff := time.Duration(attempt+1) * t.cfg.RetryBackoff
		t.logger.Debug().
			Str("request_id", requestID).
			Dur("backoff", backoff).
			Err(failure).
			Msg("retrying request")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, &Error{Kind: KindNetwork, Message: "request cancelled", Err: ctx.Err()}
		}
	}
}

// roundTrip runs one attempt. The goroutine owns the fasthttp request and
// response so an abandoned attempt never touches released buffers.
func (t *FastHTTP) roundTrip(ctx context.Context, method, uri string, headers map[string]string, payload []byte, contentType string) roundTrip {
	deadline := time.Now().Add(t.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	done := make(chan roundTrip, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(uri)
		req.Header.SetMethod(method)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if payload != nil {
			req.SetBody(payload)
			req.Header.SetContentType(contentType)
		}

		err := t.client.DoDeadline(req, resp, deadline)
		done <- roundTrip{
			status: resp.StatusCode(),
			body:   append([]byte(nil), resp.Body()...),
			err:    err,
		}
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return roundTrip{err: ctx.Err()}
	}
}

func (t *FastHTTP) failure(res roundTrip) *Error {
	if res.err == nil {
		return statusError(res.status, res.body)
	}

	msg := res.err.Error()
	switch {
	case errors.Is(res.err, fasthttp.ErrTimeout):
		msg = "request timed out"
	case errors.Is(res.err, context.Canceled), errors.Is(res.err, context.DeadlineExceeded):
		msg = "request cancelled"
	}
	return &Error{Kind: KindNetwork, Message: msg, Err: res.err}
}

func (t *FastHTTP) headers(ctx context.Context, req *Request) (map[string]string, error) {
	headers := map[string]string{
		"Accept":       "application/json",
		"X-Request-ID": uuid.NewString(),
	}

	if _, ok := req.Headers["Authorization"]; !ok && t.token != nil {
		token, err := t.token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}

	for k, v := range req.Headers {
		headers[k] = v
	}
	return headers, nil
}

func (t *FastHTTP) uri(req *Request) string {
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	uri := t.baseURL + path
	if len(req.Query) > 0 {
		uri += "?" + req.Query.Encode()
	}
	return uri
}
