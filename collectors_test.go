package promtap

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTypedBaseRegisterIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	base := NewCounterCollectorBase(prometheus.CounterOpts{Name: "idem_total", Help: "h"}, "l")

	if err := base.Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := base.Register(reg); err != nil {
		t.Fatalf("second register must be a no-op, got %v", err)
	}
}

func TestTypedBaseRegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewGaugeCollectorBase(prometheus.GaugeOpts{Name: "conflict_gauge", Help: "h"})
	b := NewGaugeCollectorBase(prometheus.GaugeOpts{Name: "conflict_gauge", Help: "h"})

	if err := a.Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := b.Register(reg); err == nil {
		t.Fatalf("expected conflict registering a second collector under the same name")
	}
}

func TestLiveBaseRegisterIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	base := NewLiveGaugeCollectorBase(prometheus.GaugeOpts{Name: "live_idem", Help: "h"})

	if err := base.Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := base.Register(reg); err != nil {
		t.Fatalf("second register must be a no-op, got %v", err)
	}
}

func TestTotalRequestsExactStatus(t *testing.T) {
	c := NewTotalRequests(WithGroupedStatus(false))

	mc := &MetricsContext{method: "GET", path: "/items/7", matched: true, routeTemplate: "/items/{id}", statusCode: 200}
	c.Observe(mc)
	c.Observe(mc)

	got := testutil.ToFloat64(c.Metric().WithLabelValues("GET", "/items/{id}", "200"))
	if got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestTotalRequestsGroupedStatus(t *testing.T) {
	c := NewTotalRequests()

	c.Observe(&MetricsContext{method: "GET", path: "/a", matched: true, routeTemplate: "/a", statusCode: 204})
	c.Observe(&MetricsContext{method: "GET", path: "/a", matched: true, routeTemplate: "/a", statusCode: 404})

	if got := testutil.ToFloat64(c.Metric().WithLabelValues("GET", "/a", "2xx")); got != 1 {
		t.Fatalf("expected one 2xx observation, got %v", got)
	}
	if got := testutil.ToFloat64(c.Metric().WithLabelValues("GET", "/a", "4xx")); got != 1 {
		t.Fatalf("expected one 4xx observation, got %v", got)
	}
}

func TestTotalRequestsUnmatchedGrouping(t *testing.T) {
	grouped := NewTotalRequests(WithGroupedStatus(false))
	raw := NewTotalRequests(WithGroupedStatus(false), WithGroupedUnmatched(false),
		WithRequestsMetricName("raw_requests_total", "h"))

	mc := &MetricsContext{method: "GET", path: "/nope", statusCode: 404}
	grouped.Observe(mc)
	raw.Observe(mc)

	if got := testutil.ToFloat64(grouped.Metric().WithLabelValues("GET", "none", "404")); got != 1 {
		t.Fatalf("expected unmatched request under handler=none, got %v", got)
	}
	if got := testutil.ToFloat64(raw.Metric().WithLabelValues("GET", "/nope", "404")); got != 1 {
		t.Fatalf("expected unmatched request under raw path, got %v", got)
	}
}

// A request that produced no status code counts as 500: the caller saw the
// connection die, not a success.
func TestTotalRequestsAbsentStatusCountsAs500(t *testing.T) {
	c := NewTotalRequests(WithGroupedStatus(false))

	c.Observe(&MetricsContext{method: "GET", path: "/x", panicked: true})

	if got := testutil.ToFloat64(c.Metric().WithLabelValues("GET", "none", "500")); got != 1 {
		t.Fatalf("expected absent status to count as 500, got %v", got)
	}
}

func TestRequestLatencyObserves(t *testing.T) {
	c := NewRequestLatency()

	c.Observe(&MetricsContext{method: "GET", path: "/a", matched: true, routeTemplate: "/a", statusCode: 200, duration: 50 * time.Millisecond})
	c.Observe(&MetricsContext{method: "GET", path: "/a", matched: true, routeTemplate: "/a", statusCode: 200, duration: 700 * time.Millisecond})

	// One child for the (GET, /a) label pair.
	if got := testutil.CollectAndCount(c.Metric()); got != 1 {
		t.Fatalf("expected a single labeled series, got %d", got)
	}
}

func TestActiveRequestsEnterExit(t *testing.T) {
	c := NewActiveRequests()
	gauge := c.Metric().WithLabelValues()

	info := &RequestInfo{Method: "GET", Path: "/a"}
	c.Enter(info)
	if got := testutil.ToFloat64(gauge); got != 1 {
		t.Fatalf("expected gauge 1 after Enter, got %v", got)
	}

	c.Exit(info, Outcome{StatusCode: 200})
	if got := testutil.ToFloat64(gauge); got != 0 {
		t.Fatalf("expected gauge 0 after Exit, got %v", got)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 301: "3xx", 404: "4xx", 500: "5xx"}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Fatalf("statusClass(%d) = %q, want %q", code, got, want)
		}
	}
}
