package metrics

import (
	"math/big"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "token_registry"

// Metrics holds the registry's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	totalMinted     prometheus.Gauge
	paused          prometheus.Gauge
	treasuryBalance prometheus.Gauge
	eventsRelayed   prometheus.Counter
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Registry operations by name and outcome code.",
		}, []string{"operation", "result"}),
		totalMinted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tokens_minted",
			Help:      "Number of tokens minted so far.",
		}),
		paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paused",
			Help:      "1 while minting is paused.",
		}),
		treasuryBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "treasury_balance_wei",
			Help:      "Accounted treasury balance in wei.",
		}),
		eventsRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_relayed_total",
			Help:      "Outbox events published to subscribers.",
		}),
	}
	m.registry.MustRegister(
		m.operations,
		m.totalMinted,
		m.paused,
		m.treasuryBalance,
		m.eventsRelayed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation counts one operation outcome
func (m *Metrics) ObserveOperation(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// SetState publishes the registry gauges
func (m *Metrics) SetState(totalMinted uint64, paused bool, balance *big.Int) {
	if m == nil {
		return
	}
	m.totalMinted.Set(float64(totalMinted))
	if paused {
		m.paused.Set(1)
	} else {
		m.paused.Set(0)
	}
	if balance != nil {
		f, _ := new(big.Float).SetInt(balance).Float64()
		m.treasuryBalance.Set(f)
	}
}

// AddRelayed counts published events
func (m *Metrics) AddRelayed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.eventsRelayed.Add(float64(n))
}
