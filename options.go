package keysub

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/keysub/deferred"
	"github.com/arloliu/keysub/internal/logging"
	"github.com/arloliu/keysub/internal/metrics"
)

// Option configures a Client with optional dependencies.
type Option func(*clientOptions)

// clientOptions holds optional Client configuration.
type clientOptions struct {
	config   *Config
	logger   Logger
	metrics  MetricsCollector
	executor deferred.Executor
}

// WithConfig sets the client configuration. Missing values are filled by SetDefaults.
//
// Parameters:
//   - cfg: Configuration to use
//
// Returns:
//   - Option: Functional option for NewClient
//
// Example:
//
//	cfg, _ := keysub.LoadConfig("keysub.yaml")
//	client, err := keysub.NewClient(session, keysub.WithConfig(cfg))
func WithConfig(cfg Config) Option {
	return func(o *clientOptions) {
		o.config = &cfg
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewClient
//
// Example:
//
//	client, err := keysub.NewClient(session, keysub.WithLogger(keysub.NewSlogLogger(slog.Default())))
func WithLogger(logger Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewClient
//
// Example:
//
//	client, err := keysub.NewClient(session,
//	    keysub.WithMetrics(keysub.NewPrometheusMetrics(prometheus.DefaultRegisterer, "myapp")))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *clientOptions) {
		o.metrics = metrics
	}
}

// WithExecutor sets the executor that runs cooperatively resolved actions (Start).
//
// When omitted, the client owns an ants goroutine pool sized by
// Config.ExecutorPoolSize and releases it on Close.
func WithExecutor(executor deferred.Executor) Option {
	return func(o *clientOptions) {
		o.executor = executor
	}
}

// NewSlogLogger adapts a *slog.Logger to the Logger interface. A nil logger uses
// slog.Default().
func NewSlogLogger(logger *slog.Logger) Logger {
	return logging.NewSlog(logger)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return logging.NewNop()
}

// NewPrometheusMetrics returns a MetricsCollector backed by Prometheus.
//
// Parameters:
//   - reg: Registerer for the collectors (nil uses prometheus.DefaultRegisterer)
//   - namespace: Metric namespace (empty uses "keysub")
//
// Returns:
//   - MetricsCollector: Collector registering its metrics on first use
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}

// NewNopMetrics returns a collector that discards everything.
func NewNopMetrics() MetricsCollector {
	return metrics.NewNop()
}
