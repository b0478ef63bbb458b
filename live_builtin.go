package promtap

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ActiveRequests is a live gauge of requests currently in flight: incremented
// on Enter, decremented on Exit. The interceptor runs Exit on every path, so
// the gauge returns to zero even when handlers panic or requests are
// cancelled. A concurrent scrape mid-request observes the raised value.
type ActiveRequests struct {
	*LiveGaugeCollectorBase
}

type activeRequestsSettings struct {
	name string
	help string
}

// ActiveRequestsOption defines a public type used by promtap APIs.
//
// ActiveRequestsOption instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ActiveRequestsOption func(*activeRequestsSettings)

// WithActiveMetricName overrides the metric name and help text.
func WithActiveMetricName(name, help string) ActiveRequestsOption {
	return func(s *activeRequestsSettings) {
		s.name = name
		s.help = help
	}
}

// NewActiveRequests creates the in-flight gauge. Default metric:
// http_active_requests.
func NewActiveRequests(opts ...ActiveRequestsOption) *ActiveRequests {
	s := activeRequestsSettings{
		name: "http_active_requests",
		help: "Number of current active requests.",
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &ActiveRequests{
		LiveGaugeCollectorBase: NewLiveGaugeCollectorBase(
			prometheus.GaugeOpts{Name: s.name, Help: s.help},
		),
	}
}

// Enter increments the gauge before dispatch.
func (c *ActiveRequests) Enter(_ *RequestInfo) {
	c.Metric().WithLabelValues().Inc()
}

// Exit decrements the gauge after dispatch, on every exit path.
func (c *ActiveRequests) Exit(_ *RequestInfo, _ Outcome) {
	c.Metric().WithLabelValues().Dec()
}
