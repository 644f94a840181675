package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goPoP "github.com/MrEthical07/goPoP"
	"github.com/MrEthical07/goPoP/keysource"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		ops         = flag.Int("ops", 200000, "operations per phase (issue + sign)")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		redisAddr   = flag.String("redis-addr", "", "redis address for the key-source cache; if empty, REDIS_ADDR env or miniredis is used")
		cacheName   = flag.String("cache-name", "loadtest", "key-source cache name")
		histograms  = flag.Bool("histograms", true, "record issue-latency histograms")
	)
	flag.Parse()

	if *ops <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "ops and concurrency must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	source := keysource.NewRedisCache(client, *cacheName, func(context.Context) (keysource.Record, error) {
		return keysource.Record{
			Algorithm: "HS256",
			KeyID:     "loadtest-key",
			Secret:    []byte("0123456789abcdef0123456789abcdef"),
		}, nil
	}, time.Hour)

	engine, err := goPoP.New().
		WithKeySource(keysource.NewCaching(source, time.Minute)).
		WithLatencyHistograms(*histograms).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	descriptors := buildDescriptors()

	issueStats := runIssuePhase(ctx, engine, descriptors, *ops, *concurrency)
	signStats := runSignPhase(ctx, engine, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("issue", issueStats)
	printStats("sign-request", signStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("engine counters: issued=%d signed=%d nonces=%d fetches=%d\n",
		snap.Counters[goPoP.MetricTokenIssued],
		snap.Counters[goPoP.MetricRequestSigned],
		snap.Counters[goPoP.MetricNonceGenerated],
		snap.Counters[goPoP.MetricKeySourceFetch],
	)
	if buckets, ok := snap.Histograms[goPoP.MetricIssueLatency]; ok {
		fmt.Printf("issue latency buckets: %v\n", buckets)
	}
}

func buildDescriptors() []goPoP.CreationDescriptor {
	paths := []string{"/orders", "/orders/42", "/users/me", "/search results"}
	descriptors := make([]goPoP.CreationDescriptor, 0, len(paths))
	for i, p := range paths {
		u := &url.URL{
			Scheme:   "https",
			Host:     "api.example.com",
			Path:     p,
			RawQuery: fmt.Sprintf("page=%d&size=50", i),
		}
		descriptors = append(descriptors, goPoP.CreationDescriptor{
			AccessToken: fmt.Sprintf("access-token-%d", i),
			Request: goPoP.HTTPRequestData{
				Method: "GET",
				URL:    u,
				Headers: []goPoP.HeaderField{
					{Name: "Accept", Values: []string{"application/json"}},
				},
			},
		})
	}
	return descriptors
}

func runIssuePhase(ctx context.Context, engine *goPoP.Engine, descriptors []goPoP.CreationDescriptor, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

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
				d := descriptors[r.Intn(len(descriptors))]
				t0 := time.Now()
				_, err := engine.Issue(ctx, &d)
				elapsed := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runSignPhase(ctx context.Context, engine *goPoP.Engine, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("https://api.example.com/orders/%d", i), nil)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				req.Header.Set("Accept", "application/json")

				t0 := time.Now()
				err = engine.SignRequest(ctx, req, "access-token-value")
				elapsed := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, elapsed)
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
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
