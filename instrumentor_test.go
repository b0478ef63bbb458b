package promtap

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBuilderReuseFails(t *testing.T) {
	b := New().WithRegistry(prometheus.NewRegistry())
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected error on builder reuse")
	}
}

func TestBuildInvalidPatternFails(t *testing.T) {
	_, err := New().
		WithRegistry(prometheus.NewRegistry()).
		WithExcludedPaths("[").
		Build()
	if !errors.Is(err, ErrInvalidExcludePattern) {
		t.Fatalf("expected ErrInvalidExcludePattern, got %v", err)
	}
}

func TestBuildNilCollectorFails(t *testing.T) {
	_, err := New().
		WithRegistry(prometheus.NewRegistry()).
		WithCollectors(nil).
		Build()
	if !errors.Is(err, ErrNilCollector) {
		t.Fatalf("expected ErrNilCollector, got %v", err)
	}

	_, err = New().
		WithRegistry(prometheus.NewRegistry()).
		WithLiveCollectors(nil).
		Build()
	if !errors.Is(err, ErrNilCollector) {
		t.Fatalf("expected ErrNilCollector, got %v", err)
	}
}

// Two collectors claiming the same metric name collide at Build, not at
// scrape time.
func TestBuildDuplicateInstrumentNameFails(t *testing.T) {
	_, err := New().
		WithRegistry(prometheus.NewRegistry()).
		WithCollectors(NewTotalRequests(), NewTotalRequests()).
		Build()
	if err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero config must validate, got %v", err)
	}

	cfg.ExcludedPaths = []string{"["}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidExcludePattern) {
		t.Fatalf("expected ErrInvalidExcludePattern, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Collectors = []Collector{nil}
	if err := cfg.Validate(); !errors.Is(err, ErrNilCollector) {
		t.Fatalf("expected ErrNilCollector, got %v", err)
	}
}

func TestWithConfigClones(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Registry = prometheus.NewRegistry()
	cfg.ExcludedPaths = []string{"^/health$"}

	b := New().WithConfig(cfg)
	cfg.ExcludedPaths[0] = "["

	if _, err := b.Build(); err != nil {
		t.Fatalf("mutating the caller's config must not affect the builder: %v", err)
	}
}

func TestInstrumentTwiceFails(t *testing.T) {
	ins, err := New().WithRegistry(prometheus.NewRegistry()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	r := chi.NewRouter()
	if err := ins.Instrument(r); err != nil {
		t.Fatalf("first instrument: %v", err)
	}
	if err := ins.Instrument(r); !errors.Is(err, ErrAlreadyInstrumented) {
		t.Fatalf("expected ErrAlreadyInstrumented, got %v", err)
	}
}

func TestInstrumentDistinctRouters(t *testing.T) {
	ins, err := New().WithRegistry(prometheus.NewRegistry()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := ins.Instrument(chi.NewRouter()); err != nil {
		t.Fatalf("first router: %v", err)
	}
	if err := ins.Instrument(chi.NewRouter()); err != nil {
		t.Fatalf("second router: %v", err)
	}
}

func TestNilInstrumentorNotReady(t *testing.T) {
	var ins *Instrumentor

	if err := ins.Instrument(chi.NewRouter()); !errors.Is(err, ErrInstrumentorNotReady) {
		t.Fatalf("expected ErrInstrumentorNotReady, got %v", err)
	}
	if err := ins.Expose(chi.NewRouter()); !errors.Is(err, ErrInstrumentorNotReady) {
		t.Fatalf("expected ErrInstrumentorNotReady, got %v", err)
	}
	if got := ins.ActiveRequestCount(); got != 0 {
		t.Fatalf("expected 0 from nil instrumentor, got %d", got)
	}
}

func TestNilRouterErrors(t *testing.T) {
	ins, err := New().WithRegistry(prometheus.NewRegistry()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := ins.Instrument(nil); !errors.Is(err, ErrNilRouter) {
		t.Fatalf("expected ErrNilRouter, got %v", err)
	}
	if err := ins.Expose(nil); !errors.Is(err, ErrNilRouter) {
		t.Fatalf("expected ErrNilRouter, got %v", err)
	}
}

func TestExposeServesExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	total := NewTotalRequests()

	ins, err := New().WithRegistry(reg).WithCollectors(total).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	r := chi.NewRouter()
	if err := ins.Instrument(r); err != nil {
		t.Fatalf("instrument: %v", err)
	}
	if err := ins.Expose(r); err != nil {
		t.Fatalf("expose: %v", err)
	}
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	doRequest(t, r, http.MethodGet, "/x")

	rec := doRequest(t, r, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Fatalf("expected text exposition content type, got %q", ct)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "http_requests_total") {
		t.Fatalf("exposition body missing counter, body:\n%s", body)
	}
}

func TestExposeMultipleEndpoints(t *testing.T) {
	ins, err := New().WithRegistry(prometheus.NewRegistry()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	r := chi.NewRouter()
	if err := ins.Expose(r); err != nil {
		t.Fatalf("default endpoint: %v", err)
	}
	if err := ins.Expose(r, ExposeEndpoint("/internal/metrics")); err != nil {
		t.Fatalf("second endpoint: %v", err)
	}

	for _, endpoint := range []string{"/metrics", "/internal/metrics"} {
		rec := doRequest(t, r, http.MethodGet, endpoint)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from %s, got %d", endpoint, rec.Code)
		}
	}
}

func TestExposeSameEndpointTwiceFails(t *testing.T) {
	ins, err := New().WithRegistry(prometheus.NewRegistry()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	r := chi.NewRouter()
	if err := ins.Expose(r); err != nil {
		t.Fatalf("first expose: %v", err)
	}
	if err := ins.Expose(r); !errors.Is(err, ErrEndpointAlreadyExposed) {
		t.Fatalf("expected ErrEndpointAlreadyExposed, got %v", err)
	}
}

func TestExposeInvalidEndpoint(t *testing.T) {
	ins, err := New().WithRegistry(prometheus.NewRegistry()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := ins.Expose(chi.NewRouter(), ExposeEndpoint("metrics")); !errors.Is(err, ErrInvalidEndpoint) {
		t.Fatalf("expected ErrInvalidEndpoint, got %v", err)
	}
}

func TestConcurrentRequestsAccurateCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	total := NewTotalRequests(WithGroupedStatus(false))
	active := NewActiveRequests()

	ins, err := New().
		WithRegistry(reg).
		WithCollectors(total).
		WithLiveCollectors(active).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	r := chi.NewRouter()
	if err := ins.Instrument(r); err != nil {
		t.Fatalf("instrument: %v", err)
	}
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	const goroutines = 32
	const perG = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))
			}
		}()
	}
	wg.Wait()

	want := float64(goroutines * perG)
	if got := testutil.ToFloat64(total.Metric().WithLabelValues("GET", "/items/{id}", "200")); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := testutil.ToFloat64(active.Metric().WithLabelValues()); got != 0 {
		t.Fatalf("expected gauge 0 after all requests, got %v", got)
	}
	if got := ins.ActiveRequestCount(); got != 0 {
		t.Fatalf("expected in-flight count 0, got %d", got)
	}
}

func TestDefaultRegistryUsedWhenNil(t *testing.T) {
	// No registry configured: instruments land in the process default.
	// Use a collector with a unique name to avoid cross-test collisions.
	total := NewTotalRequests(WithRequestsMetricName("default_registry_probe_total", "h"))

	ins, err := New().WithCollectors(total).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer prometheus.DefaultRegisterer.Unregister(total.Metric())

	r := chi.NewRouter()
	if err := ins.Instrument(r); err != nil {
		t.Fatalf("instrument: %v", err)
	}
	r.Get("/x", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	doRequest(t, r, http.MethodGet, "/x")

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "default_registry_probe_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected instrument in the process default registry")
	}
}
