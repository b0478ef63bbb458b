package promtap

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Typed bases for post-request collectors. Each base owns exactly one metric
// family of its kind; a concrete collector embeds a base and supplies only
// the label extraction and the single recording call in Observe.
//
//	Docs: docs/collectors.md

// CounterCollectorBase defines a public type used by promtap APIs.
//
// CounterCollectorBase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterCollectorBase struct {
	metric *prometheus.CounterVec
}

// NewCounterCollectorBase creates an unregistered counter family. The
// instrument is registered into the configured registry at Build time.
func NewCounterCollectorBase(opts prometheus.CounterOpts, labelNames ...string) *CounterCollectorBase {
	return &CounterCollectorBase{metric: prometheus.NewCounterVec(opts, labelNames)}
}

// Metric returns the owned counter family.
func (b *CounterCollectorBase) Metric() *prometheus.CounterVec { return b.metric }

// Register hooks the owned instrument into reg. Safe to call multiple times
// with the same registry.
func (b *CounterCollectorBase) Register(reg prometheus.Registerer) error {
	return registerOnce(reg, b.metric)
}

// GaugeCollectorBase defines a public type used by promtap APIs.
//
// GaugeCollectorBase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GaugeCollectorBase struct {
	metric *prometheus.GaugeVec
}

// NewGaugeCollectorBase creates an unregistered gauge family.
func NewGaugeCollectorBase(opts prometheus.GaugeOpts, labelNames ...string) *GaugeCollectorBase {
	return &GaugeCollectorBase{metric: prometheus.NewGaugeVec(opts, labelNames)}
}

// Metric returns the owned gauge family.
func (b *GaugeCollectorBase) Metric() *prometheus.GaugeVec { return b.metric }

// Register hooks the owned instrument into reg. Safe to call multiple times
// with the same registry.
func (b *GaugeCollectorBase) Register(reg prometheus.Registerer) error {
	return registerOnce(reg, b.metric)
}

// HistogramCollectorBase defines a public type used by promtap APIs.
//
// HistogramCollectorBase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramCollectorBase struct {
	metric *prometheus.HistogramVec
}

// NewHistogramCollectorBase creates an unregistered histogram family.
// Buckets are configured through opts.Buckets.
func NewHistogramCollectorBase(opts prometheus.HistogramOpts, labelNames ...string) *HistogramCollectorBase {
	return &HistogramCollectorBase{metric: prometheus.NewHistogramVec(opts, labelNames)}
}

// Metric returns the owned histogram family.
func (b *HistogramCollectorBase) Metric() *prometheus.HistogramVec { return b.metric }

// Register hooks the owned instrument into reg. Safe to call multiple times
// with the same registry.
func (b *HistogramCollectorBase) Register(reg prometheus.Registerer) error {
	return registerOnce(reg, b.metric)
}

// SummaryCollectorBase defines a public type used by promtap APIs.
//
// SummaryCollectorBase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SummaryCollectorBase struct {
	metric *prometheus.SummaryVec
}

// NewSummaryCollectorBase creates an unregistered summary family.
// Objectives are configured through opts.Objectives.
func NewSummaryCollectorBase(opts prometheus.SummaryOpts, labelNames ...string) *SummaryCollectorBase {
	return &SummaryCollectorBase{metric: prometheus.NewSummaryVec(opts, labelNames)}
}

// Metric returns the owned summary family.
func (b *SummaryCollectorBase) Metric() *prometheus.SummaryVec { return b.metric }

// Register hooks the owned instrument into reg. Safe to call multiple times
// with the same registry.
func (b *SummaryCollectorBase) Register(reg prometheus.Registerer) error {
	return registerOnce(reg, b.metric)
}
