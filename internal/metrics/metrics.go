// Package metrics exposes the lab's Prometheus metrics.
//
// Metrics (all namespaced "effectlab_"):
//
//   - live_timers (gauge): timers scheduled across every visitor window,
//     leaked ones included.
//   - sessions (gauge): visitor windows currently open.
//   - effect_runs_total, effect_cleanups_total, contract_violations_total
//     (counters, labels route and variant).
//   - quote_fetches_total (counter, label result: ok | error).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vesaa/effectlab/internal/hooks"
)

const namespace = "effectlab"

// Metrics holds the registered collectors.
type Metrics struct {
	registry *prometheus.Registry

	effectRuns   *prometheus.CounterVec
	cleanups     *prometheus.CounterVec
	violations   *prometheus.CounterVec
	quoteFetches *prometheus.CounterVec
}

// New registers every metric on a fresh registry. liveTimers and sessions
// are sampled at scrape time.
func New(liveTimers, sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_timers",
		Help:      "Timers currently scheduled, including ones leaked past unmount.",
	}, func() float64 { return float64(liveTimers()) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Visitor windows currently open.",
	}, func() float64 { return float64(sessions()) })

	m.effectRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "effect_runs_total",
		Help:      "Effect bodies executed.",
	}, []string{"route", "variant"})

	m.cleanups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "effect_cleanups_total",
		Help:      "Effect cleanups executed.",
	}, []string{"route", "variant"})

	m.violations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contract_violations_total",
		Help:      "Effects that returned something other than nothing or a cleanup.",
	}, []string{"route", "variant"})

	m.quoteFetches = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_fetches_total",
		Help:      "Upstream quote fetches by result.",
	}, []string{"result"})

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Observer returns a hooks.Observer counting into the route/variant series.
func (m *Metrics) Observer(route, variant string) hooks.Observer {
	return observer{
		runs:       m.effectRuns.WithLabelValues(route, variant),
		cleanups:   m.cleanups.WithLabelValues(route, variant),
		violations: m.violations.WithLabelValues(route, variant),
	}
}

// QuoteFetched records one upstream fetch; result is "ok" or "error".
// It matches quote.Counting.OnResult.
func (m *Metrics) QuoteFetched(result string) {
	m.quoteFetches.WithLabelValues(result).Inc()
}

type observer struct {
	runs, cleanups, violations prometheus.Counter
}

func (o observer) EffectRun()         { o.runs.Inc() }
func (o observer) EffectCleanup()     { o.cleanups.Inc() }
func (o observer) ContractViolation() { o.violations.Inc() }
