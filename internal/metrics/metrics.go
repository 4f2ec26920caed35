package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics interface {
	IncReports(game string, outcome string)
	IncProviderFailures(game string)
	IncBaselinesCreated(game string)
	IncDeliveries(status string)
	IncCacheHits()
	IncCacheMisses()
	ObserveTickDuration(duration time.Duration)
}

// Outcomes of a daily report
const (
	OutcomeComplete     = "complete"
	OutcomeNoBaseline   = "no_baseline"
	OutcomeNoCurrent    = "no_current"
	OutcomeUnavailable  = "unavailable"
	DeliverySent        = "sent"
	DeliveryFailed      = "failed"
	DeliverySkippedCap  = "skipped_cap"
	DeliveryNoAccount   = "no_account"
	DeliveryUnsupported = "unsupported"
)

type PrometheusMetrics struct {
	reports          *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	baselinesCreated *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	tickDuration     prometheus.Histogram
}

func (m *PrometheusMetrics) IncReports(game string, outcome string) {
	m.reports.WithLabelValues(game, outcome).Inc()
}

func (m *PrometheusMetrics) IncProviderFailures(game string) {
	m.providerFailures.WithLabelValues(game).Inc()
}

func (m *PrometheusMetrics) IncBaselinesCreated(game string) {
	m.baselinesCreated.WithLabelValues(game).Inc()
}

func (m *PrometheusMetrics) IncDeliveries(status string) {
	m.deliveries.WithLabelValues(status).Inc()
}

func (m *PrometheusMetrics) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *PrometheusMetrics) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *PrometheusMetrics) ObserveTickDuration(duration time.Duration) {
	m.tickDuration.Observe(duration.Seconds())
}

// New registers every collector on the provided registerer.
// Use a fresh registry per instance when more than one is needed
func New(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ranktrack_reports_total",
			Help: "Daily reports generated, by game and outcome",
		}, []string{"game", "outcome"}),
		providerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ranktrack_provider_failures_total",
			Help: "Rank provider calls that returned no data",
		}, []string{"game"}),
		baselinesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ranktrack_baselines_created_total",
			Help: "Daily baseline snapshots persisted",
		}, []string{"game"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ranktrack_deliveries_total",
			Help: "Scheduled report deliveries, by status",
		}, []string{"status"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ranktrack_cache_hits_total",
			Help: "Identity cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "ranktrack_cache_misses_total",
			Help: "Identity cache misses",
		}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ranktrack_tick_duration_seconds",
			Help:    "Time spent processing one schedule slot",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

type noopMetrics struct{}

func NewNoop() Metrics {
	return &noopMetrics{}
}

func (n *noopMetrics) IncReports(_ string, _ string)       {}
func (n *noopMetrics) IncProviderFailures(_ string)        {}
func (n *noopMetrics) IncBaselinesCreated(_ string)        {}
func (n *noopMetrics) IncDeliveries(_ string)              {}
func (n *noopMetrics) IncCacheHits()                       {}
func (n *noopMetrics) IncCacheMisses()                     {}
func (n *noopMetrics) ObserveTickDuration(_ time.Duration) {}
