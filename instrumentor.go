package promtap

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Instrumentor defines a public type used by promtap APIs.
//
// Instrumentor instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Instrumentor struct {
	config     Config
	logger     *zap.Logger
	matcher    *pathMatcher
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	inflight atomic.Int64

	mu           sync.Mutex
	instrumented map[chi.Router]struct{}
	exposed      map[chi.Router]map[string]struct{}
}

// Instrument attaches the interceptor middleware to the router's request
// pipeline. It must be called before routes are registered (chi rejects
// middleware added after the first route). Attaching the same router twice is
// a configuration error: the second call returns [ErrAlreadyInstrumented]
// instead of double-wrapping every request.
//
//	Docs: docs/middleware.md
func (i *Instrumentor) Instrument(r chi.Router) error {
	if i == nil {
		return ErrInstrumentorNotReady
	}
	if r == nil {
		return ErrNilRouter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.instrumented[r]; ok {
		return ErrAlreadyInstrumented
	}

	r.Use(i.Middleware)
	i.instrumented[r] = struct{}{}
	return nil
}

type exposeSettings struct {
	endpoint    string
	openMetrics bool
}

// ExposeOption defines a public type used by promtap APIs.
//
// ExposeOption instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ExposeOption func(*exposeSettings)

// ExposeEndpoint sets the route the exposition handler is mounted at.
// Default "/metrics".
func ExposeEndpoint(endpoint string) ExposeOption {
	return func(s *exposeSettings) { s.endpoint = endpoint }
}

// ExposeOpenMetrics enables OpenMetrics content-type negotiation on the
// exposition handler.
func ExposeOpenMetrics(enabled bool) ExposeOption {
	return func(s *exposeSettings) { s.openMetrics = enabled }
}

// Expose registers a GET route serving the configured registry's current
// state in the Prometheus text exposition format. It is independent of the
// per-request interceptor and may be called multiple times with different
// endpoints; exposing the same endpoint twice on one router returns
// [ErrEndpointAlreadyExposed].
//
// The endpoint itself is instrumented like any other route unless its path
// is covered by an exclusion pattern.
func (i *Instrumentor) Expose(r chi.Router, opts ...ExposeOption) error {
	if i == nil {
		return ErrInstrumentorNotReady
	}
	if r == nil {
		return ErrNilRouter
	}

	s := exposeSettings{endpoint: "/metrics"}
	for _, opt := range opts {
		opt(&s)
	}

	if !strings.HasPrefix(s.endpoint, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, s.endpoint)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	endpoints, ok := i.exposed[r]
	if !ok {
		endpoints = map[string]struct{}{}
		i.exposed[r] = endpoints
	}
	if _, ok := endpoints[s.endpoint]; ok {
		return fmt.Errorf("%w: %q", ErrEndpointAlreadyExposed, s.endpoint)
	}

	handler := promhttp.HandlerFor(i.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: s.openMetrics,
	})
	r.Method(http.MethodGet, s.endpoint, handler)
	endpoints[s.endpoint] = struct{}{}
	return nil
}

// ActiveRequestCount returns the number of instrumented requests currently in
// flight in this process. Excluded requests are not counted.
func (i *Instrumentor) ActiveRequestCount() int64 {
	if i == nil {
		return 0
	}
	return i.inflight.Load()
}
