package promtap

import (
	"net/http"
	"time"
)

// RequestInfo is the pre-dispatch snapshot handed to live collectors. It
// carries only what is knowable before the router runs: the matched route
// template does not exist yet and is deliberately absent. Live collectors
// that need per-template labels must be redesigned as post-request
// collectors.
//
// The Header field is a read-only view of the request headers; collectors
// must not mutate it.
type RequestInfo struct {
	Method     string
	Path       string
	Header     http.Header
	RemoteAddr string

	// RequestID is set only when Config.RequestID is enabled.
	RequestID string
}

// Outcome is what live collectors receive at Exit time: the status code the
// handler produced (0 when none was written before the request ended) and the
// downstream failure, if any.
type Outcome struct {
	StatusCode int
	Err        error
}

// Status returns the written status code and whether one was produced.
func (o Outcome) Status() (int, bool) {
	return o.StatusCode, o.StatusCode != 0
}

// MetricsContext is the read-only snapshot of request and response facts
// assembled exactly once per non-excluded request, after every live
// collector has exited and before any post-request collector runs. It is
// never mutated after construction and never shared across requests.
//
//	Docs: docs/collectors.md
type MetricsContext struct {
	method        string
	path          string
	matched       bool
	routeTemplate string
	statusCode    int
	duration      time.Duration
	bytesWritten  int64
	err           error
	panicked      bool
	panicValue    any
	active        int64
	requestID     string
}

// Method returns the request's HTTP method.
func (mc *MetricsContext) Method() string { return mc.method }

// Path returns the raw request path as received, before routing.
func (mc *MetricsContext) Path() string { return mc.path }

// PathTemplate returns the route template resolved by the router (for
// example "/items/{id}") together with a match flag. When the router matched
// no route, the raw path is returned with false so collectors always have a
// usable label value.
func (mc *MetricsContext) PathTemplate() (bool, string) {
	if !mc.matched {
		return false, mc.path
	}
	return true, mc.routeTemplate
}

// Status returns the response status code and whether the handler produced
// one. The code is absent when the request ended without a header being
// written: the handler panicked, or its context was cancelled first.
func (mc *MetricsContext) Status() (int, bool) {
	return mc.statusCode, mc.statusCode != 0
}

// Duration returns the elapsed wall time of the dispatch, measured on the
// monotonic clock regardless of outcome.
func (mc *MetricsContext) Duration() time.Duration { return mc.duration }

// BytesWritten returns the number of response body bytes the handler wrote.
func (mc *MetricsContext) BytesWritten() int64 { return mc.bytesWritten }

// Err returns the downstream failure: a wrapped panic value, or the request
// context's cancellation error. Nil on success.
func (mc *MetricsContext) Err() error { return mc.err }

// Panicked reports whether the downstream handler panicked. PanicValue holds
// the recovered value; the interceptor re-raises it unchanged after all
// bookkeeping completes.
func (mc *MetricsContext) Panicked() bool { return mc.panicked }

// PanicValue returns the recovered panic value, or nil.
func (mc *MetricsContext) PanicValue() any { return mc.panicValue }

// ActiveRequests returns the number of instrumented requests that were in
// flight when this one entered the pipeline, this one included.
func (mc *MetricsContext) ActiveRequests() int64 { return mc.active }

// RequestID returns the per-request ID, or "" when Config.RequestID is off.
func (mc *MetricsContext) RequestID() string { return mc.requestID }
