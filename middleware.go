package promtap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// Middleware is the interceptor attached by [Instrumentor.Instrument]. It is
// exported so the pipeline can be mounted by hand on routers the Instrument
// guard does not cover.
//
// Per request: the exclusion gate runs first and excluded requests pass
// through untouched. Otherwise live collectors Enter in configured order, the
// request dispatches downstream with status capture and monotonic timing,
// live collectors Exit in reverse order on every outcome, exactly one
// MetricsContext is assembled, post-request collectors observe it in
// configured order, and any handler panic is re-raised unchanged. A panic
// inside any collector hook is recovered and logged; it never alters the
// response or the other collectors' metrics.
func (i *Instrumentor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if i.matcher.shouldExclude(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		info := i.newRequestInfo(r, w)
		live := i.config.LiveCollectors

		for idx, lc := range live {
			i.safeEnter(idx, lc, info)
		}

		active := i.inflight.Add(1)
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		var panicked bool
		var panicValue any

		start := time.Now()
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					panicked = true
					panicValue = rec
				}
			}()
			next.ServeHTTP(ww, r)
		}()
		duration := time.Since(start)
		i.inflight.Add(-1)

		var downstreamErr error
		if panicked {
			downstreamErr = fmt.Errorf("handler panic: %v", panicValue)
		} else if err := r.Context().Err(); err != nil {
			downstreamErr = err
		}

		status := ww.Status()
		if status == 0 && !panicked && downstreamErr == nil {
			// net/http writes an implicit 200 when the handler returns
			// without touching the writer. A panicked or cancelled request
			// that wrote nothing keeps its status absent.
			status = http.StatusOK
		}

		out := Outcome{StatusCode: status, Err: downstreamErr}
		for idx := len(live) - 1; idx >= 0; idx-- {
			i.safeExit(idx, live[idx], info, out)
		}

		mc := &MetricsContext{
			method:       info.Method,
			path:         info.Path,
			duration:     duration,
			statusCode:   status,
			bytesWritten: int64(ww.BytesWritten()),
			err:          downstreamErr,
			panicked:     panicked,
			panicValue:   panicValue,
			active:       active,
			requestID:    info.RequestID,
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				mc.matched = true
				mc.routeTemplate = pattern
			}
		}

		for idx, col := range i.config.Collectors {
			i.safeObserve(idx, col, mc)
		}

		if panicked {
			panic(panicValue)
		}
	})
}

func (i *Instrumentor) newRequestInfo(r *http.Request, w http.ResponseWriter) *RequestInfo {
	info := &RequestInfo{
		Method:     r.Method,
		Path:       r.URL.Path,
		Header:     r.Header,
		RemoteAddr: r.RemoteAddr,
	}
	if i.config.RequestID {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		info.RequestID = id
		w.Header().Set(requestIDHeader, id)
	}
	return info
}

func (i *Instrumentor) safeEnter(idx int, lc LiveCollector, info *RequestInfo) {
	defer func() {
		if rec := recover(); rec != nil {
			i.logger.Error("live collector enter failed",
				zap.Int("collector", idx),
				zap.String("phase", "enter"),
				zap.Any("panic", rec),
			)
		}
	}()
	lc.Enter(info)
}

func (i *Instrumentor) safeExit(idx int, lc LiveCollector, info *RequestInfo, out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			i.logger.Error("live collector exit failed",
				zap.Int("collector", idx),
				zap.String("phase", "exit"),
				zap.Any("panic", rec),
			)
		}
	}()
	lc.Exit(info, out)
}

func (i *Instrumentor) safeObserve(idx int, col Collector, mc *MetricsContext) {
	defer func() {
		if rec := recover(); rec != nil {
			i.logger.Error("post-request collector observe failed",
				zap.Int("collector", idx),
				zap.String("phase", "observe"),
				zap.Any("panic", rec),
			)
		}
	}()
	col.Observe(mc)
}
