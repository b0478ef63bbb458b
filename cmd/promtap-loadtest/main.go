package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	promtap "github.com/MrEthical07/promtap"
)

func main() {
	var (
		ops         = flag.Int("ops", 200000, "requests per phase (instrumented + excluded)")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		listenAddr  = flag.String("listen", "127.0.0.1:0", "address to bind the test server to")
	)
	flag.Parse()

	if *ops <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "ops and concurrency must be > 0")
		os.Exit(2)
	}

	registry := prometheus.NewRegistry()
	ins, err := promtap.New().
		WithRegistry(registry).
		WithCollectors(promtap.NewTotalRequests(), promtap.NewRequestLatency()).
		WithLiveCollectors(promtap.NewActiveRequests()).
		WithExcludedPaths("^/health$").
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build instrumentor: %v\n", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	if err := ins.Instrument(router); err != nil {
		fmt.Fprintf(os.Stderr, "instrument: %v\n", err)
		os.Exit(1)
	}
	if err := ins.Expose(router); err != nil {
		fmt.Fprintf(os.Stderr, "expose: %v\n", err)
		os.Exit(1)
	}
	router.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		os.Exit(1)
	}
	server := &http.Server{Handler: router}
	go func() { _ = server.Serve(ln) }()
	defer func() { _ = server.Close() }()

	base := "http://" + ln.Addr().String()
	fmt.Printf("serving on %s\n", base)

	instrumented := runPhase(base, "/items/", *ops, *concurrency, true)
	excluded := runPhase(base, "/health", *ops, *concurrency, false)

	fmt.Println("---- results ----")
	printStats("instrumented", instrumented)
	printStats("excluded", excluded)

	printScrape(base)
}

func runPhase(base, path string, ops, concurrency int, randomID bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	client := &http.Client{Timeout: 10 * time.Second}

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				target := base + path
				if randomID {
					target = fmt.Sprintf("%s%s%d", base, path, r.Intn(1000))
				}
				t0 := time.Now()
				resp, err := client.Get(target)
				d := time.Since(t0)
				if err != nil || resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&failures, 1)
				}
				if resp != nil {
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      samples[len(samples)*50/100],
		p95:      samples[len(samples)*95/100],
		p99:      samples[len(samples)*99/100],
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%-12s ops=%d failures=%d total=%s p50=%s p95=%s p99=%s rate=%.0f req/s\n",
		name, s.ops, s.failures, s.total.Round(time.Millisecond),
		s.p50, s.p95, s.p99, s.opsPerS)
}

func printScrape(base string) {
	resp, err := http.Get(base + "/metrics")
	if err != nil {
		fmt.Fprintf(os.Stderr, "scrape: %v\n", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scrape read: %v\n", err)
		return
	}

	fmt.Println("---- scrape (http_* series) ----")
	for _, line := range strings.Split(string(body), "\n") {
		if strings.HasPrefix(line, "http_") {
			fmt.Println(line)
		}
	}
}
