package keysub

import (
	"context"
	"errors"
	"fmt"

	"github.com/arloliu/keysub/deferred"
	"github.com/arloliu/keysub/handler"
	"github.com/arloliu/keysub/internal/logging"
	"github.com/arloliu/keysub/internal/metrics"
	"github.com/arloliu/keysub/types"
)

// Client declares subscribers on a session.
//
// A Client is safe for concurrent use. It holds no per-subscriber state; each
// Subscriber owns its own lifecycle.
type Client struct {
	session  types.Session
	cfg      Config
	defaults types.SubInfo
	logger   Logger
	metrics  MetricsCollector
	executor deferred.Executor
	pool     *deferred.Pool // non-nil when the client owns the executor
}

// NewClient creates a Client bound to session.
//
// Parameters:
//   - session: Session performing registration and delivery
//   - opts: Optional configuration (WithConfig, WithLogger, WithMetrics, WithExecutor)
//
// Returns:
//   - *Client: Ready to use client; call Close to release its executor
//   - error: ErrSessionRequired, ErrInvalidConfig or executor construction failure
//
// Example:
//
//	sess := memsession.New()
//	client, err := keysub.NewClient(sess)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	sub, err := client.Subscribe("sensor/temp").
//	    Callback(func(s keysub.Sample) { fmt.Println(s) }).
//	    Declare().
//	    Wait()
func NewClient(session types.Session, opts ...Option) (*Client, error) {
	if session == nil {
		return nil, ErrSessionRequired
	}

	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := DefaultConfig()
	if o.config != nil {
		cfg = *o.config
		SetDefaults(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	defaults, err := cfg.subInfoDefaults()
	if err != nil {
		return nil, err
	}

	logger := logging.OrNop(o.logger)
	cfg.ValidateWithWarnings(logger)

	c := &Client{
		session:  session,
		cfg:      cfg,
		defaults: defaults,
		logger:   logger,
		metrics:  metrics.OrNop(o.metrics),
		executor: o.executor,
	}
	if c.executor == nil {
		pool, err := deferred.NewPool(cfg.ExecutorPoolSize, logger)
		if err != nil {
			return nil, err
		}
		c.pool = pool
		c.executor = pool
	}

	return c, nil
}

// Config returns the effective client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Close releases the executor owned by the client. Subscribers stay declared; close
// or drop them individually.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// Subscribe starts a subscriber builder for keyExpr with the client's defaults.
func (c *Client) Subscribe(keyExpr string) Builder {
	return Builder{
		client: c,
		cfg: types.SubscriberConfig{
			KeyExpr: types.KeyExpr(keyExpr),
			Info:    c.defaults,
		},
	}
}

func newAction[T any](c *Client, fn deferred.Func[T]) *deferred.Action[T] {
	return deferred.New(fn, deferred.WithExecutor(c.executor), deferred.WithLogger(c.logger))
}

func (c *Client) handlerOptions() []handler.Option {
	return []handler.Option{handler.WithLogger(c.logger), handler.WithMetrics(c.metrics)}
}

// declare performs the single registration call for cfg.
func (c *Client) declare(ctx context.Context, cfg types.SubscriberConfig, consumer types.Consumer) (*Subscriber, error) {
	if err := cfg.KeyExpr.Validate(); err != nil {
		return nil, err
	}
	if consumer == nil {
		return nil, ErrNilCallback
	}

	var (
		rec *types.Record
		err error
	)
	if cfg.Local {
		rec, err = c.session.DeclareLocalSubscriber(ctx, cfg.KeyExpr, consumer)
	} else {
		rec, err = c.session.DeclareSubscriber(ctx, cfg.KeyExpr, consumer, cfg.Info)
	}
	if err == nil && rec == nil {
		err = errors.New("session returned no subscription record")
	}
	c.metrics.RecordDeclare(cfg.Local, err == nil)
	if err != nil {
		c.logger.Debug("subscriber declaration failed", "key_expr", cfg.KeyExpr, "local", cfg.Local, "error", err)
		return nil, fmt.Errorf("failed to declare subscriber on %s: %w", cfg.KeyExpr, err)
	}

	c.metrics.RecordActiveSubscribers(1)
	c.logger.Debug("subscriber declared", "id", rec.ID(), "key_expr", cfg.KeyExpr, "local", cfg.Local, "info", cfg.Info)

	return newSubscriber(c, rec, cfg), nil
}

// undeclare issues the single unregistration call for rec.
func (c *Client) undeclare(ctx context.Context, rec *types.Record, reason string) error {
	err := c.session.UndeclareSubscriber(ctx, rec.ID())
	c.metrics.RecordUndeclare(reason, err == nil)
	c.metrics.RecordActiveSubscribers(-1)
	if err != nil {
		return fmt.Errorf("failed to undeclare subscriber %d: %w", rec.ID(), err)
	}
	c.logger.Debug("subscriber undeclared", "id", rec.ID(), "key_expr", rec.KeyExpr(), "reason", reason)

	return nil
}
