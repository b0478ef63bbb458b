package promtap

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Config defines a public type used by promtap APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Registry receives every collector's instrument at Build time and backs
	// the exposition endpoint. When nil, the process-wide default registry
	// (prometheus.DefaultRegisterer / prometheus.DefaultGatherer) is used.
	Registry *prometheus.Registry

	// Collectors run once per completed non-excluded request, in order.
	Collectors []Collector

	// LiveCollectors wrap each non-excluded request: Enter in order before
	// dispatch, Exit in reverse order after, on every exit path.
	LiveCollectors []LiveCollector

	// ExcludedPaths holds regular expressions compiled at Build time. A
	// request whose raw path matches any pattern anywhere (search semantics,
	// not full match) bypasses instrumentation entirely. Anchor with ^...$
	// for exact-path exclusion.
	ExcludedPaths []string

	// RequestID stamps a unique ID on each instrumented request's
	// RequestInfo and the X-Request-Id response header. An incoming
	// X-Request-Id header is reused instead of generating a new one.
	RequestID bool

	// Logger receives isolated per-collector failures. Defaults to a nop
	// logger; it is never called on the excluded-request path.
	Logger *zap.Logger
}

func defaultConfig() Config {
	return Config{}
}

// DefaultConfig returns the zero configuration: process-default registry, no
// collectors, no exclusions, no request IDs, nop logger.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Collectors = append([]Collector(nil), cfg.Collectors...)
	out.LiveCollectors = append([]LiveCollector(nil), cfg.LiveCollectors...)
	out.ExcludedPaths = append([]string(nil), cfg.ExcludedPaths...)
	return out
}

// Validate checks the configuration for errors that must surface before any
// request is served: nil collector entries and exclusion patterns that do not
// compile.
func (c Config) Validate() error {
	_, err := c.compile()
	return err
}

// compile runs the full validation and returns the compiled exclusion
// matcher, so Build compiles each pattern exactly once.
func (c Config) compile() (*pathMatcher, error) {
	for _, col := range c.Collectors {
		if col == nil {
			return nil, ErrNilCollector
		}
	}
	for _, lc := range c.LiveCollectors {
		if lc == nil {
			return nil, ErrNilCollector
		}
	}
	return newPathMatcher(c.ExcludedPaths)
}
