package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	motionTransitions *prometheus.CounterVec
	votesCast         *prometheus.CounterVec
	sweepResolved     prometheus.Counter
	sweepRuns         *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: gatherer,
		motionTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "committee_motion_transitions_total",
			Help: "motion status changes by source and target status",
		}, []string{"from", "to"}),
		votesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "committee_votes_cast_total",
			Help: "votes recorded by position",
		}, []string{"position"}),
		sweepResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "committee_sweep_resolved_total",
			Help: "motions closed by the resolution sweep",
		}),
		sweepRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "committee_sweep_runs_total",
			Help: "resolution sweep runs by result",
		}, []string{"result"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "committee_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) MotionTransition(from, to string) {
	if m == nil {
		return
	}
	m.motionTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) VoteCast(position string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(position).Inc()
}

// SweepRun records one sweep. result is "ok", "error" or "skipped".
func (m *Metrics) SweepRun(result string, resolved int) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(result).Inc()
	m.sweepResolved.Add(float64(resolved))
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
