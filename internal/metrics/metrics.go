// Package metrics exposes client health figures in Prometheus format.
// Metrics are registered in a dedicated registry so they do not
// interfere with the default global registry.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks wallet-session and chain-interaction metrics.
type Collector struct {
	registry *prometheus.Registry

	sessionTransitions *prometheus.CounterVec
	sessionStatus      *prometheus.GaugeVec
	rpcReadDuration    *prometheus.HistogramVec
	txOutcomes         *prometheus.CounterVec
	cacheReloads       prometheus.Counter
	rebinds            prometheus.Counter
	uptimeSeconds      prometheus.Gauge

	startTime time.Time
}

// NewCollector creates a Collector with a dedicated registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	sessionTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backchain",
		Name:      "session_transitions_total",
		Help:      "Session state machine transitions by source and destination state.",
	}, []string{"from", "to"})

	sessionStatus := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "backchain",
		Name:      "session_status",
		Help:      "Current session status (1 for the active state, 0 otherwise).",
	}, []string{"status"})

	rpcReadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "backchain",
		Name:      "rpc_read_duration_seconds",
		Help:      "Chain read latency histogram by contract.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"contract"})

	txOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backchain",
		Name:      "tx_outcomes_total",
		Help:      "Transaction outcomes by action and final status.",
	}, []string{"action", "status"})

	cacheReloads := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backchain",
		Name:      "fee_cache_reloads_total",
		Help:      "Explicit fee/stake rule cache reloads.",
	})

	rebinds := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backchain",
		Name:      "handle_set_rebinds_total",
		Help:      "Contract handle set rebinds caused by provider changes.",
	})

	uptimeSec := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "backchain",
		Name:      "uptime_seconds",
		Help:      "Time since the client started in seconds.",
	})

	reg.MustRegister(sessionTransitions)
	reg.MustRegister(sessionStatus)
	reg.MustRegister(rpcReadDuration)
	reg.MustRegister(txOutcomes)
	reg.MustRegister(cacheReloads)
	reg.MustRegister(rebinds)
	reg.MustRegister(uptimeSec)

	return &Collector{
		registry:           reg,
		sessionTransitions: sessionTransitions,
		sessionStatus:      sessionStatus,
		rpcReadDuration:    rpcReadDuration,
		txOutcomes:         txOutcomes,
		cacheReloads:       cacheReloads,
		rebinds:            rebinds,
		uptimeSeconds:      uptimeSec,
		startTime:          time.Now(),
	}
}

// RecordTransition records a session state machine transition.
func (c *Collector) RecordTransition(from, to string) {
	c.sessionTransitions.WithLabelValues(from, to).Inc()
	c.sessionStatus.Reset()
	c.sessionStatus.WithLabelValues(to).Set(1)
}

// RecordRPCRead records the latency of a chain read for a contract.
func (c *Collector) RecordRPCRead(contract string, d time.Duration) {
	c.rpcReadDuration.WithLabelValues(contract).Observe(d.Seconds())
}

// RecordTxOutcome records the final status of a submitted transaction.
func (c *Collector) RecordTxOutcome(action, status string) {
	c.txOutcomes.WithLabelValues(action, status).Inc()
}

// RecordCacheReload records an explicit fee/stake rules reload.
func (c *Collector) RecordCacheReload() {
	c.cacheReloads.Inc()
}

// RecordRebind records a contract handle set rebind.
func (c *Collector) RecordRebind() {
	c.rebinds.Inc()
}

// Handler returns an HTTP handler serving the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// UpdateUptime refreshes the uptime gauge.
func (c *Collector) UpdateUptime() {
	c.uptimeSeconds.Set(time.Since(c.startTime).Seconds())
}

var (
	defaultCollector *Collector
	once             sync.Once
)

// Default returns the process-wide collector.
func Default() *Collector {
	once.Do(func() {
		defaultCollector = NewCollector()
	})
	return defaultCollector
}
