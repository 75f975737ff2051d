// Package metrics provides an in-memory Prometheus-compatible metrics
// collector for HTTP and webhook instrumentation.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// latencyBuckets are the histogram bucket boundaries in milliseconds.
// The final boundary is +Inf so every observation lands in at least one bucket.
var latencyBuckets = []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, math.Inf(1)}

// httpKey identifies an HTTP request counter by path and status code.
type httpKey struct {
	path   string
	status int
}

// Collector accumulates request counters and a latency histogram.
// All methods are safe for concurrent use; a single mutex is adequate
// at one update per request.
type Collector struct {
	mu sync.Mutex

	httpRequests    map[httpKey]int64
	webhookRequests map[string]int64

	// latencyCounts[i] is the number of observations <= latencyBuckets[i].
	// Cumulative values across boundaries are derived at export time.
	latencyCounts []int64
	latencySum    float64
	latencyCount  int64
}

// New creates an empty Collector.
func New() *Collector {
	return &Collector{
		httpRequests:    make(map[httpKey]int64),
		webhookRequests: make(map[string]int64),
		latencyCounts:   make([]int64, len(latencyBuckets)),
	}
}

// IncHTTPRequest increments the request counter for a path/status pair.
func (c *Collector) IncHTTPRequest(path string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpRequests[httpKey{path: path, status: status}]++
}

// IncWebhookRequest increments the webhook outcome counter.
// Known outcomes are invalid_signature, validation_error, duplicate and created.
func (c *Collector) IncWebhookRequest(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.webhookRequests[result]++
}

// ObserveLatency records one latency observation in milliseconds.
func (c *Collector) ObserveLatency(ms float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencySum += ms
	c.latencyCount++
	for i, bound := range latencyBuckets {
		if ms <= bound {
			c.latencyCounts[i]++
		}
	}
}

// Export renders all metrics in Prometheus text exposition format
// (version 0.0.4). Output is sorted by key so repeated exports with no
// intervening observations are byte-identical.
func (c *Collector) Export() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder

	b.WriteString("# HELP http_requests_total Total HTTP requests by path and status\n")
	b.WriteString("# TYPE http_requests_total counter\n")
	httpKeys := make([]httpKey, 0, len(c.httpRequests))
	for k := range c.httpRequests {
		httpKeys = append(httpKeys, k)
	}
	sort.Slice(httpKeys, func(i, j int) bool {
		if httpKeys[i].path != httpKeys[j].path {
			return httpKeys[i].path < httpKeys[j].path
		}
		return httpKeys[i].status < httpKeys[j].status
	})
	for _, k := range httpKeys {
		fmt.Fprintf(&b, "http_requests_total{path=%q,status=\"%d\"} %d\n", k.path, k.status, c.httpRequests[k])
	}

	b.WriteString("# HELP webhook_requests_total Total webhook requests by result\n")
	b.WriteString("# TYPE webhook_requests_total counter\n")
	results := make([]string, 0, len(c.webhookRequests))
	for r := range c.webhookRequests {
		results = append(results, r)
	}
	sort.Strings(results)
	for _, r := range results {
		fmt.Fprintf(&b, "webhook_requests_total{result=%q} %d\n", r, c.webhookRequests[r])
	}

	b.WriteString("# HELP request_latency_ms_bucket Request latency histogram in milliseconds\n")
	b.WriteString("# TYPE request_latency_ms_bucket histogram\n")
	var cumulative int64
	for i, bound := range latencyBuckets {
		cumulative += c.latencyCounts[i]
		le := "+Inf"
		if !math.IsInf(bound, 1) {
			le = strconv.Itoa(int(bound))
		}
		fmt.Fprintf(&b, "request_latency_ms_bucket{le=%q} %d\n", le, cumulative)
	}

	fmt.Fprintf(&b, "request_latency_ms_sum %.2f\n", c.latencySum)
	fmt.Fprintf(&b, "request_latency_ms_count %d\n", c.latencyCount)

	return b.String()
}
