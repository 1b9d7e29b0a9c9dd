package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zhouchenh/rdapct/internal/cache"
	"github.com/zhouchenh/rdapct/internal/network/status"
	"github.com/zhouchenh/rdapct/internal/results"
	"net/http"
	"time"
)

const namespace = "rdapct"

// Metrics owns its registry, so several instances can coexist in tests.
type Metrics struct {
	registry     *prometheus.Registry
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	queries      *prometheus.CounterVec
	findings     *prometheus.CounterVec
	ruleOutcomes *prometheus.CounterVec
	ruleFailures *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Number of validation runs by result",
		},
		[]string{"result"},
	)
	m.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of validation runs",
			Buckets:   prometheus.DefBuckets,
		},
	)
	m.queries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Number of primary queries by classified status",
		},
		[]string{"status"},
	)
	m.findings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Number of findings by severity",
		},
		[]string{"severity"},
	)
	m.ruleOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_outcomes_total",
			Help:      "Number of validated rules by group and outcome",
		},
		[]string{"group", "outcome"},
	)
	m.ruleFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_failures_total",
			Help:      "Number of rules whose validation could not complete",
		},
		[]string{"rule"},
	)
	m.registry.MustRegister(m.runs, m.runDuration, m.queries, m.findings, m.ruleOutcomes, m.ruleFailures)
	return m
}

// WatchCache exports the statistics of c.
func (m *Metrics) WatchCache(c *cache.ResponseCache) {
	if m == nil || c == nil {
		return
	}
	watch := func(name string, stats func() cache.Stats) {
		m.registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "cache_hits_total",
				Help:        "Number of cache hits",
				ConstLabels: prometheus.Labels{"cache": name},
			}, func() float64 { return float64(stats().Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "cache_misses_total",
				Help:        "Number of cache misses",
				ConstLabels: prometheus.Labels{"cache": name},
			}, func() float64 { return float64(stats().Misses) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "cache_evictions_total",
				Help:        "Number of evicted cache entries",
				ConstLabels: prometheus.Labels{"cache": name},
			}, func() float64 { return float64(stats().Evictions) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "cache_entries",
				Help:        "Number of cached entries",
				ConstLabels: prometheus.Labels{"cache": name},
			}, func() float64 { return float64(stats().Size) }),
		)
	}
	watch("json", c.JSON.Stats)
	watch("schema", c.Schemas.Stats)
}

func (m *Metrics) ObserveRun(ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuery(s status.Status) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) ObserveFindings(findings []results.Finding) {
	if m == nil {
		return
	}
	for _, f := range findings {
		switch {
		case f.IsError():
			m.findings.WithLabelValues("error").Inc()
		case f.IsWarning():
			m.findings.WithLabelValues("warning").Inc()
		}
	}
}

func (m *Metrics) ObserveRule(group string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.ruleOutcomes.WithLabelValues(group, outcome).Inc()
}

func (m *Metrics) ObserveRuleFailure(rule string) {
	if m == nil {
		return
	}
	m.ruleFailures.WithLabelValues(rule).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
