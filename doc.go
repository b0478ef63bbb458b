// Package promtap attaches Prometheus instrumentation to every request served
// by a chi-routed HTTP server: labeled counters, gauges, histograms, and
// summaries recorded without reading request or response bodies.
//
// Collectors come in two families with different lifecycles. Post-request
// collectors ([Collector]) observe a completed request through an immutable
// [MetricsContext] carrying the matched route template, final status code, and
// elapsed duration. Live collectors ([LiveCollector]) wrap the request's whole
// execution span: Enter runs before dispatch, Exit is guaranteed to run after
// dispatch on every path — normal return, handler panic, or cancellation — in
// exact reverse of entry order. Live collectors never see the route template;
// the router only resolves it during dispatch, so template-labeled metrics
// must be post-request collectors.
//
// The package is designed for concurrent server workloads: an [Instrumentor]
// and its collectors are safe to share across requests after [Builder.Build];
// instrument updates rely on prometheus/client_golang's atomic primitives and
// the core adds no locking of its own.
//
// # Architecture boundaries
//
// promtap is the public surface. It exposes [Instrumentor], [Builder],
// [Config], the collector interfaces and typed bases, and the value types
// ([RequestInfo], [MetricsContext], [Outcome]). Routing and dispatch belong to
// chi; instrument storage and the text exposition format belong to
// prometheus/client_golang.
//
// # What this package must NOT do
//
//   - Read or buffer request/response bodies.
//   - Alter responses or suppress handler panics — an instrumented app must be
//     byte-identical to an uninstrumented one, panics included.
//   - Perform I/O inside Enter/Exit hooks or on the excluded-request path.
//   - Aggregate across processes; one Instrumentor observes one process.
//
// # Performance contract
//
// The excluded-request path is the hot path: a single pass over the compiled
// exclusion patterns and a direct call into the next handler, no wrapping and
// no allocation. Non-excluded requests pay one response-writer wrapper, one
// RequestInfo, and one MetricsContext per request.
package promtap
