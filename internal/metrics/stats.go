package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheStats reports the month cache counters.
type CacheStats interface {
	Stats() (hits, misses uint64)
	Size() int
}

// RegisterCacheStats exposes cache hits, misses and size, read at scrape
// time.
func RegisterCacheStats(reg prometheus.Registerer, c CacheStats) {
	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "month_cache",
			Name:      "hits_total",
			Help:      "Total number of month cache hits.",
		}, func() float64 {
			hits, _ := c.Stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "month_cache",
			Name:      "misses_total",
			Help:      "Total number of month cache misses.",
		}, func() float64 {
			_, misses := c.Stats()
			return float64(misses)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "month_cache",
			Name:      "entries",
			Help:      "Number of months held in the cache.",
		}, func() float64 {
			return float64(c.Size())
		}),
	)
}

// GuardStats are the counters kept by the request guards.
type GuardStats struct {
	RateLimited    func() int64
	TrackedClients func() int64
	Suspicious     func() int64
}

// RegisterGuardStats exposes the rate limiter and probe detector counters.
func RegisterGuardStats(reg prometheus.Registerer, g GuardStats) {
	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		}, func() float64 { return float64(g.RateLimited()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "clients",
			Help:      "Number of clients tracked by the rate limiter.",
		}, func() float64 { return float64(g.TrackedClients()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "suspicious_requests_total",
			Help:      "Total number of requests rejected as probes.",
		}, func() float64 { return float64(g.Suspicious()) }),
	)
}
