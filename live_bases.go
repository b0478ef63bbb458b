package promtap

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Typed bases for live collectors, mirroring the post-request bases. A
// concrete live collector embeds one of these and implements Enter/Exit.
// Because Enter time predates routing, the route template is structurally
// unavailable to live collectors; label by method or not at all.

// LiveCounterCollectorBase defines a public type used by promtap APIs.
//
// LiveCounterCollectorBase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LiveCounterCollectorBase struct {
	metric *prometheus.CounterVec
}

// NewLiveCounterCollectorBase creates an unregistered counter family for a
// live collector.
func NewLiveCounterCollectorBase(opts prometheus.CounterOpts, labelNames ...string) *LiveCounterCollectorBase {
	return &LiveCounterCollectorBase{metric: prometheus.NewCounterVec(opts, labelNames)}
}

// Metric returns the owned counter family.
func (b *LiveCounterCollectorBase) Metric() *prometheus.CounterVec { return b.metric }

// Register hooks the owned instrument into reg. Safe to call multiple times
// with the same registry.
func (b *LiveCounterCollectorBase) Register(reg prometheus.Registerer) error {
	return registerOnce(reg, b.metric)
}

// LiveGaugeCollectorBase defines a public type used by promtap APIs.
//
// LiveGaugeCollectorBase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LiveGaugeCollectorBase struct {
	metric *prometheus.GaugeVec
}

// NewLiveGaugeCollectorBase creates an unregistered gauge family for a live
// collector. The usual shape is inc on Enter, dec on Exit; the interceptor
// guarantees Exit runs even when the handler panics, so the gauge cannot
// leak.
func NewLiveGaugeCollectorBase(opts prometheus.GaugeOpts, labelNames ...string) *LiveGaugeCollectorBase {
	return &LiveGaugeCollectorBase{metric: prometheus.NewGaugeVec(opts, labelNames)}
}

// Metric returns the owned gauge family.
func (b *LiveGaugeCollectorBase) Metric() *prometheus.GaugeVec { return b.metric }

// Register hooks the owned instrument into reg. Safe to call multiple times
// with the same registry.
func (b *LiveGaugeCollectorBase) Register(reg prometheus.Registerer) error {
	return registerOnce(reg, b.metric)
}

// LiveHistogramCollectorBase defines a public type used by promtap APIs.
//
// LiveHistogramCollectorBase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LiveHistogramCollectorBase struct {
	metric *prometheus.HistogramVec
}

// NewLiveHistogramCollectorBase creates an unregistered histogram family for
// a live collector.
func NewLiveHistogramCollectorBase(opts prometheus.HistogramOpts, labelNames ...string) *LiveHistogramCollectorBase {
	return &LiveHistogramCollectorBase{metric: prometheus.NewHistogramVec(opts, labelNames)}
}

// Metric returns the owned histogram family.
func (b *LiveHistogramCollectorBase) Metric() *prometheus.HistogramVec { return b.metric }

// Register hooks the owned instrument into reg. Safe to call multiple times
// with the same registry.
func (b *LiveHistogramCollectorBase) Register(reg prometheus.Registerer) error {
	return registerOnce(reg, b.metric)
}

// LiveSummaryCollectorBase defines a public type used by promtap APIs.
//
// LiveSummaryCollectorBase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LiveSummaryCollectorBase struct {
	metric *prometheus.SummaryVec
}

// NewLiveSummaryCollectorBase creates an unregistered summary family for a
// live collector.
func NewLiveSummaryCollectorBase(opts prometheus.SummaryOpts, labelNames ...string) *LiveSummaryCollectorBase {
	return &LiveSummaryCollectorBase{metric: prometheus.NewSummaryVec(opts, labelNames)}
}

// Metric returns the owned summary family.
func (b *LiveSummaryCollectorBase) Metric() *prometheus.SummaryVec { return b.metric }

// Register hooks the owned instrument into reg. Safe to call multiple times
// with the same registry.
func (b *LiveSummaryCollectorBase) Register(reg prometheus.Registerer) error {
	return registerOnce(reg, b.metric)
}
