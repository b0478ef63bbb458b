package promtap

import (
	"errors"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Builder defines a public type used by promtap APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. The config is cloned; later
// mutations of cfg by the caller do not affect the builder.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRegistry sets the registry collectors are registered into and the
// exposition endpoint gathers from. Nil selects the process-wide default
// registry.
func (b *Builder) WithRegistry(registry *prometheus.Registry) *Builder {
	b.config.Registry = registry
	return b
}

// WithCollectors appends post-request collectors; invocation order is the
// configured order.
func (b *Builder) WithCollectors(collectors ...Collector) *Builder {
	b.config.Collectors = append(b.config.Collectors, collectors...)
	return b
}

// WithLiveCollectors appends live collectors; Enter order is the configured
// order, Exit order its exact reverse.
func (b *Builder) WithLiveCollectors(collectors ...LiveCollector) *Builder {
	b.config.LiveCollectors = append(b.config.LiveCollectors, collectors...)
	return b
}

// WithExcludedPaths appends exclusion patterns (regular expressions, search
// semantics).
func (b *Builder) WithExcludedPaths(patterns ...string) *Builder {
	b.config.ExcludedPaths = append(b.config.ExcludedPaths, patterns...)
	return b
}

// WithRequestID toggles per-request ID stamping on RequestInfo and the
// X-Request-Id response header.
func (b *Builder) WithRequestID(enabled bool) *Builder {
	b.config.RequestID = enabled
	return b
}

// WithLogger sets the logger that receives isolated collector failures.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.config.Logger = logger
	return b
}

// Build validates the configuration, compiles the exclusion patterns, and
// registers every collector's instrument into the configured registry. All
// configuration errors surface here, before any request is served.
func (b *Builder) Build() (*Instrumentor, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	matcher, err := cfg.compile()
	if err != nil {
		return nil, err
	}

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if cfg.Registry != nil {
		registerer = cfg.Registry
		gatherer = cfg.Registry
	}

	for _, col := range cfg.Collectors {
		if r, ok := col.(registrable); ok {
			if err := r.Register(registerer); err != nil {
				return nil, err
			}
		}
	}
	for _, lc := range cfg.LiveCollectors {
		if r, ok := lc.(registrable); ok {
			if err := r.Register(registerer); err != nil {
				return nil, err
			}
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b.built = true

	return &Instrumentor{
		config:       cfg,
		logger:       logger,
		matcher:      matcher,
		registerer:   registerer,
		gatherer:     gatherer,
		instrumented: map[chi.Router]struct{}{},
		exposed:      map[chi.Router]map[string]struct{}{},
	}, nil
}
