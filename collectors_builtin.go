package promtap

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Built-in post-request collectors covering the common HTTP serving metrics.
// Both label by the matched route template, which is why they are
// post-request collectors and not live ones.

const unmatchedHandlerLabel = "none"

// TotalRequests counts completed requests by method, handler template and
// status. With status grouping on, codes collapse to their class ("2xx");
// with unmatched-template grouping on, requests that matched no route share
// the "none" handler label instead of exploding cardinality with raw paths.
type TotalRequests struct {
	*CounterCollectorBase

	groupStatusCode        bool
	groupUnmatchedTemplate bool
}

type totalRequestsSettings struct {
	name                   string
	help                   string
	groupStatusCode        bool
	groupUnmatchedTemplate bool
}

// TotalRequestsOption defines a public type used by promtap APIs.
//
// TotalRequestsOption instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TotalRequestsOption func(*totalRequestsSettings)

// WithRequestsMetricName overrides the metric name and help text.
func WithRequestsMetricName(name, help string) TotalRequestsOption {
	return func(s *totalRequestsSettings) {
		s.name = name
		s.help = help
	}
}

// WithGroupedStatus toggles collapsing status codes to their class ("2xx").
func WithGroupedStatus(enabled bool) TotalRequestsOption {
	return func(s *totalRequestsSettings) { s.groupStatusCode = enabled }
}

// WithGroupedUnmatched toggles collapsing unmatched routes to the "none"
// handler label. When off, the raw path is used; beware label cardinality.
func WithGroupedUnmatched(enabled bool) TotalRequestsOption {
	return func(s *totalRequestsSettings) { s.groupUnmatchedTemplate = enabled }
}

// NewTotalRequests creates the request counter. Defaults: metric
// http_requests_total, grouped status classes, grouped unmatched templates.
func NewTotalRequests(opts ...TotalRequestsOption) *TotalRequests {
	s := totalRequestsSettings{
		name:                   "http_requests_total",
		help:                   "Total number of requests by method, status and handler.",
		groupStatusCode:        true,
		groupUnmatchedTemplate: true,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &TotalRequests{
		CounterCollectorBase: NewCounterCollectorBase(
			prometheus.CounterOpts{Name: s.name, Help: s.help},
			"method", "handler", "status",
		),
		groupStatusCode:        s.groupStatusCode,
		groupUnmatchedTemplate: s.groupUnmatchedTemplate,
	}
}

// Observe records one completed request. A request that produced no status
// code (handler panicked before writing) counts as 500.
func (c *TotalRequests) Observe(mc *MetricsContext) {
	matched, template := mc.PathTemplate()
	if c.groupUnmatchedTemplate && !matched {
		template = unmatchedHandlerLabel
	}

	code, ok := mc.Status()
	if !ok {
		code = http.StatusInternalServerError
	}
	status := strconv.Itoa(code)
	if c.groupStatusCode {
		status = statusClass(code)
	}

	c.Metric().WithLabelValues(mc.Method(), template, status).Inc()
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// RequestLatency observes request durations in seconds by method and handler
// template.
type RequestLatency struct {
	*HistogramCollectorBase

	groupUnmatchedTemplate bool
}

type requestLatencySettings struct {
	name                   string
	help                   string
	buckets                []float64
	groupUnmatchedTemplate bool
}

// RequestLatencyOption defines a public type used by promtap APIs.
//
// RequestLatencyOption instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RequestLatencyOption func(*requestLatencySettings)

// WithLatencyMetricName overrides the metric name and help text.
func WithLatencyMetricName(name, help string) RequestLatencyOption {
	return func(s *requestLatencySettings) {
		s.name = name
		s.help = help
	}
}

// WithLatencyBuckets overrides the histogram buckets (upper bounds, seconds).
func WithLatencyBuckets(buckets ...float64) RequestLatencyOption {
	return func(s *requestLatencySettings) { s.buckets = buckets }
}

// WithLatencyGroupedUnmatched toggles the "none" handler label for requests
// that matched no route.
func WithLatencyGroupedUnmatched(enabled bool) RequestLatencyOption {
	return func(s *requestLatencySettings) { s.groupUnmatchedTemplate = enabled }
}

// NewRequestLatency creates the duration histogram. Defaults: metric
// http_request_duration_seconds with buckets 0.1, 0.5, 1.
func NewRequestLatency(opts ...RequestLatencyOption) *RequestLatency {
	s := requestLatencySettings{
		name:                   "http_request_duration_seconds",
		help:                   "Histogram of HTTP request durations (request start to response end).",
		buckets:                []float64{0.1, 0.5, 1},
		groupUnmatchedTemplate: true,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &RequestLatency{
		HistogramCollectorBase: NewHistogramCollectorBase(
			prometheus.HistogramOpts{Name: s.name, Help: s.help, Buckets: s.buckets},
			"method", "handler",
		),
		groupUnmatchedTemplate: s.groupUnmatchedTemplate,
	}
}

// Observe records the request's elapsed duration.
func (c *RequestLatency) Observe(mc *MetricsContext) {
	matched, template := mc.PathTemplate()
	if c.groupUnmatchedTemplate && !matched {
		template = unmatchedHandlerLabel
	}

	c.Metric().WithLabelValues(mc.Method(), template).Observe(mc.Duration().Seconds())
}
