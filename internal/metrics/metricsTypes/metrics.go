package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_ApiRequest      = "api_request"
	Metric_Incr_ApiRequestError = "api_request_error"
	Metric_Incr_WatchPoll       = "watch_poll"

	Metric_Gauge_WatchedPoints = "watched_points"
	Metric_Gauge_ActiveAlarms  = "active_alarms"

	Metric_Timing_ApiDuration = "api_request_duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name:   Metric_Incr_ApiRequest,
			Labels: []string{"method", "status"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ApiRequestError,
			Labels: []string{"method"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_WatchPoll,
			Labels: []string{},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_WatchedPoints,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Gauge_ActiveAlarms,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name:   Metric_Timing_ApiDuration,
			Labels: []string{"method"},
		},
	},
}
