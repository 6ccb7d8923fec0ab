package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pulseone/pulse-admin/internal/logger"
	"github.com/pulseone/pulse-admin/internal/metrics/metricsTypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PrometheusMetricsClient(t *testing.T) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	reg := prometheus.NewRegistry()
	pmc, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
		Metrics:    metricsTypes.MetricTypes,
		Registerer: reg,
	}, l)
	require.Nil(t, err)

	t.Run("Counters accept partial labels", func(t *testing.T) {
		err := pmc.Incr(metricsTypes.Metric_Incr_ApiRequest, []metricsTypes.MetricsLabel{
			{Name: "method", Value: "GET"},
			{Name: "unknown", Value: "ignored"},
		}, 2)
		assert.Nil(t, err)

		c := pmc.counters[metricsTypes.Metric_Incr_ApiRequest]
		assert.Equal(t, float64(2), testutil.ToFloat64(c.With(prometheus.Labels{"method": "GET", "status": ""})))
	})
	t.Run("Gauges and histograms record values", func(t *testing.T) {
		assert.Nil(t, pmc.Gauge(metricsTypes.Metric_Gauge_WatchedPoints, 7, nil))
		assert.Equal(t, float64(7), testutil.ToFloat64(pmc.gauges[metricsTypes.Metric_Gauge_WatchedPoints].With(prometheus.Labels{})))

		assert.Nil(t, pmc.Timing(metricsTypes.Metric_Timing_ApiDuration, 15*time.Millisecond, nil))
		assert.Equal(t, 1, testutil.CollectAndCount(pmc.histograms[metricsTypes.Metric_Timing_ApiDuration]))
	})
	t.Run("Unknown metrics are ignored", func(t *testing.T) {
		assert.Nil(t, pmc.Incr("does_not_exist", nil, 1))
	})
	t.Run("A second client on the same registry reuses collectors", func(t *testing.T) {
		again, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
			Metrics:    metricsTypes.MetricTypes,
			Registerer: reg,
		}, l)
		require.Nil(t, err)
		assert.Same(t, pmc.counters[metricsTypes.Metric_Incr_ApiRequest], again.counters[metricsTypes.Metric_Incr_ApiRequest])
	})
	t.Run("Server exposes the registry", func(t *testing.T) {
		ps := NewPrometheusServer(&PrometheusServerConfig{Port: 0, Gatherer: reg}, l)
		rec := httptest.NewRecorder()
		ps.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		assert.Equal(t, 200, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), "pulse_admin_api_request"))
	})
}
