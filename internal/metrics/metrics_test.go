package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncReports("LOL", OutcomeComplete)
	m.IncReports("LOL", OutcomeComplete)
	m.IncReports("APEX", OutcomeNoBaseline)
	m.IncProviderFailures("APEX")
	m.IncBaselinesCreated("LOL")
	m.IncDeliveries(DeliverySent)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncCacheMisses()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reports.WithLabelValues("LOL", OutcomeComplete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reports.WithLabelValues("APEX", OutcomeNoBaseline)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerFailures.WithLabelValues("APEX")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.baselinesCreated.WithLabelValues("LOL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues(DeliverySent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheMisses))
}

func TestPrometheusMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestPrometheusMetrics_TickHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveTickDuration(150 * time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "ranktrack_tick_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNoop(t *testing.T) {
	m := NewNoop()
	assert.NotPanics(t, func() {
		m.IncReports("LOL", OutcomeComplete)
		m.IncDeliveries(DeliveryFailed)
		m.ObserveTickDuration(time.Second)
	})
}
