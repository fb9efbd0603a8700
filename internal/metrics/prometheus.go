package metrics

import (
	"strconv"
	"sync"

	"github.com/arloliu/keysub/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are created and registered lazily on first use so that constructing a
// collector never panics on duplicate registration until it is actually exercised.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	declares          *prometheus.CounterVec
	undeclares        *prometheus.CounterVec
	pulls             *prometheus.CounterVec
	activeSubscribers prometheus.Gauge
	samplesDelivered  prometheus.Counter
	samplesDropped    *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "keysub" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "keysub"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.declares = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "subscriber",
			Name:      "declares_total",
			Help:      "Total subscriber declarations by locality and result.",
		}, []string{"local", "result"})

		p.undeclares = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "subscriber",
			Name:      "undeclares_total",
			Help:      "Total subscriber undeclarations by teardown path (close,drop) and result.",
		}, []string{"reason", "result"})

		p.pulls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "subscriber",
			Name:      "pulls_total",
			Help:      "Total pull requests forwarded to the session by result.",
		}, []string{"result"})

		p.activeSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "subscriber",
			Name:      "active",
			Help:      "Current number of live subscribers.",
		})

		p.samplesDelivered = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "handler",
			Name:      "samples_delivered_total",
			Help:      "Total samples accepted by handler receivers.",
		})

		p.samplesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "handler",
			Name:      "samples_dropped_total",
			Help:      "Total samples dropped by the handler bridge by reason (full,detached,evicted).",
		}, []string{"reason"})

		p.reg.MustRegister(p.declares)
		p.reg.MustRegister(p.undeclares)
		p.reg.MustRegister(p.pulls)
		p.reg.MustRegister(p.activeSubscribers)
		p.reg.MustRegister(p.samplesDelivered)
		p.reg.MustRegister(p.samplesDropped)
	})
}

func result(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}

// RecordDeclare increments the declaration counter.
func (p *PrometheusCollector) RecordDeclare(local bool, success bool) {
	p.ensureRegistered()
	p.declares.WithLabelValues(strconv.FormatBool(local), result(success)).Inc()
}

// RecordUndeclare increments the undeclaration counter.
func (p *PrometheusCollector) RecordUndeclare(reason string, success bool) {
	p.ensureRegistered()
	p.undeclares.WithLabelValues(reason, result(success)).Inc()
}

// RecordPull increments the pull counter.
func (p *PrometheusCollector) RecordPull(success bool) {
	p.ensureRegistered()
	p.pulls.WithLabelValues(result(success)).Inc()
}

// RecordActiveSubscribers adjusts the live subscriber gauge.
func (p *PrometheusCollector) RecordActiveSubscribers(delta int) {
	p.ensureRegistered()
	p.activeSubscribers.Add(float64(delta))
}

// RecordSampleDelivered increments the delivered sample counter.
func (p *PrometheusCollector) RecordSampleDelivered() {
	p.ensureRegistered()
	p.samplesDelivered.Inc()
}

// RecordSampleDropped increments the dropped sample counter.
func (p *PrometheusCollector) RecordSampleDropped(reason string) {
	p.ensureRegistered()
	p.samplesDropped.WithLabelValues(reason).Inc()
}
