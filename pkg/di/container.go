package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-resource-client/authflow"
	"github.com/goliatone/go-resource-client/cache"
	"github.com/goliatone/go-resource-client/config"
	"github.com/goliatone/go-resource-client/media"
	"github.com/goliatone/go-resource-client/resourceclient"
	"github.com/goliatone/go-resource-client/resources"
	"github.com/goliatone/go-resource-client/session"
	"github.com/goliatone/go-resource-client/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Option customises container construction.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	session    session.Store
	transport  transport.Transport
	registry   *resources.Registry
}

// WithRegisterer registers client metrics with reg instead of the default
// prometheus registerer. Metrics are only created when enabled in config.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithSessionStore uses s instead of opening the configured backend. The
// container still closes it.
func WithSessionStore(s session.Store) Option {
	return func(o *options) { o.session = s }
}

// WithTransport replaces the fasthttp transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithRegistry replaces the built-in resource definitions.
func WithRegistry(r *resources.Registry) Option {
	return func(o *options) { o.registry = r }
}

// Container owns the cache store and every component built on it. It is
// created empty and torn down with Close.
type Container struct {
	config        config.Config
	logger        zerolog.Logger
	store         cache.Store
	keySerializer cache.KeySerializer
	session       session.Store
	transport     transport.Transport
	metrics       *resourceclient.Metrics
	client        *resourceclient.Client
	registry      *resources.Registry
	services      *resources.Services
	media         *media.Resolver
	auth          *authflow.Flow
}

// NewContainer validates cfg and wires store, session, transport, client
// and services together. Requests are authorised with the access token kept
// in the session store.
func NewContainer(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}

	sess := o.session
	if sess == nil {
		sess, err = session.Open(ctx, cfg.Session, logger)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
	}

	c, err := build(cfg, logger, store, sess, o)
	if err != nil {
		_ = sess.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithDefaults creates a container from config.Default().
func NewContainerWithDefaults(ctx context.Context, logger zerolog.Logger, opts ...Option) (*Container, error) {
	return NewContainer(ctx, config.Default(), logger, opts...)
}

func build(cfg config.Config, logger zerolog.Logger, store cache.Store, sess session.Store, o options) (*Container, error) {
	tr := o.transport
	if tr == nil {
		token := func(ctx context.Context) (string, error) {
			return session.Lookup(ctx, sess, session.KeyAccessToken)
		}
		fh, err := transport.NewFastHTTP(cfg.API, logger, transport.WithTokenFunc(token))
		if err != nil {
			return nil, fmt.Errorf("create transport: %w", err)
		}
		tr = fh
	}

	var metrics *resourceclient.Metrics
	if cfg.Metrics.Enabled {
		reg := o.registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		m, err := resourceclient.NewMetrics(reg, cfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		metrics = m
	}

	keys := cache.NewDefaultKeySerializer()
	client, err := resourceclient.New(tr, store, keys, logger, resourceclient.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}

	registry := o.registry
	if registry == nil {
		registry, err = resources.DefaultRegistry()
		if err != nil {
			_ = client.Close()
			return nil, err
		}
	}

	services, err := resources.NewServices(client, registry)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Container{
		config:        cfg,
		logger:        logger,
		store:         store,
		keySerializer: keys,
		session:       sess,
		transport:     tr,
		metrics:       metrics,
		client:        client,
		registry:      registry,
		services:      services,
		media:         media.NewResolver(cfg.Media),
		auth:          authflow.New(services.Auth, services.Profile, sess, logger),
	}, nil
}

// Config returns the configuration the container was built with.
func (c *Container) Config() config.Config { return c.config }

// Logger returns the root logger.
func (c *Container) Logger() zerolog.Logger { return c.logger }

// CacheStore returns the payload store shared by the client.
func (c *Container) CacheStore() cache.Store { return c.store }

// KeySerializer returns the serializer used to build cache keys.
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

// Session returns the session store.
func (c *Container) Session() session.Store { return c.session }

// Transport returns the HTTP transport.
func (c *Container) Transport() transport.Transport { return c.transport }

// Metrics returns the client metrics, or nil when disabled.
func (c *Container) Metrics() *resourceclient.Metrics { return c.metrics }

// Client returns the resource client.
func (c *Container) Client() *resourceclient.Client { return c.client }

// Registry returns the resource definitions.
func (c *Container) Registry() *resources.Registry { return c.registry }

// Services returns the typed resource services.
func (c *Container) Services() *resources.Services { return c.services }

// Media returns the image URL resolver.
func (c *Container) Media() *media.Resolver { return c.media }

// Auth returns the login and password reset flow.
func (c *Container) Auth() *authflow.Flow { return c.auth }

// Reset clears every cached entry, leaving the container usable.
func (c *Container) Reset(ctx context.Context) error {
	return c.client.Reset(ctx)
}

// Close stops background refetches and closes the session store.
func (c *Container) Close() error {
	return errors.Join(c.client.Close(), c.session.Close())
}
