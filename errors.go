package promtap

import "errors"

var (
	// ErrInvalidExcludePattern is returned by the instrumentation pipeline when configuration or attachment fails.
	ErrInvalidExcludePattern = errors.New("invalid exclude pattern")
	// ErrAlreadyInstrumented is returned by the instrumentation pipeline when configuration or attachment fails.
	ErrAlreadyInstrumented = errors.New("router already instrumented")
	// ErrEndpointAlreadyExposed is returned by the instrumentation pipeline when configuration or attachment fails.
	ErrEndpointAlreadyExposed = errors.New("metrics endpoint already exposed on router")
	// ErrInvalidEndpoint is returned by the instrumentation pipeline when configuration or attachment fails.
	ErrInvalidEndpoint = errors.New("metrics endpoint must start with '/'")
	// ErrNilRouter is returned by the instrumentation pipeline when configuration or attachment fails.
	ErrNilRouter = errors.New("router must not be nil")
	// ErrInstrumentorNotReady is returned by the instrumentation pipeline when configuration or attachment fails.
	ErrInstrumentorNotReady = errors.New("instrumentor not built")
	// ErrNilCollector is returned by the instrumentation pipeline when configuration or attachment fails.
	ErrNilCollector = errors.New("collector must not be nil")
)
