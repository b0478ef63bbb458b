package promtap

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is a post-request collector: invoked once after every
// non-excluded request completes, including requests whose handler panicked
// or was cancelled — implementations must tolerate an absent status code.
//
// Implementations are shared by all in-flight requests and must be safe for
// concurrent use; any per-request state belongs on the MetricsContext, never
// on the collector instance. A panic inside Observe is recovered by the
// interceptor, logged, and does not affect other collectors or the response.
type Collector interface {
	Observe(mc *MetricsContext)
}

// LiveCollector wraps a request's execution span. Enter runs before dispatch
// with the pre-dispatch RequestInfo; Exit runs after dispatch on every exit
// path — normal return, handler panic, cancellation — in exact reverse of
// entry order, receiving the captured Outcome.
//
// Hooks must be fast, in-memory operations (label computation plus an atomic
// instrument update) and must not perform I/O. The same concurrency rules as
// [Collector] apply.
type LiveCollector interface {
	Enter(info *RequestInfo)
	Exit(info *RequestInfo, out Outcome)
}

// registrable is satisfied by the typed collector bases. Build registers
// every configured collector that implements it into the configured registry.
type registrable interface {
	Register(reg prometheus.Registerer) error
}

// registerOnce registers c, treating a re-registration of the same collector
// as a no-op so Register stays safe to call multiple times.
func registerOnce(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) && are.ExistingCollector == c {
			return nil
		}
		return err
	}
	return nil
}
