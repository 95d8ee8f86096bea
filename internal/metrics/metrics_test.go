package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsRegisterWithoutConflict(t *testing.T) {
	reg := NewRegistry()
	NewHTTPMetrics(reg)
	NewFeedbackMetrics(reg)
	RegisterCacheStats(reg, fakeCache{})
	RegisterGuardStats(reg, GuardStats{
		RateLimited:    func() int64 { return 0 },
		TrackedClients: func() int64 { return 0 },
		Suspicious:     func() int64 { return 0 },
	})
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("gather: %v", err)
	}
}

func TestObserveUpload(t *testing.T) {
	m := NewFeedbackMetrics(prometheus.NewRegistry())
	m.ObserveUpload(3)
	m.ObserveUpload(2)

	if got := testutil.ToFloat64(m.UploadsTotal); got != 2 {
		t.Errorf("uploads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UploadRowsTotal); got != 5 {
		t.Errorf("rows = %v, want 5", got)
	}
}

func TestHTTPMiddlewareLabelsByPattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /months/{month}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.Handle("GET /metrics", Handler(reg))
	h := m.Middleware(mux)

	for _, path := range []string{"/months/March-2024", "/months/April-2024", "/nowhere", "/metrics"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "GET /months/{month}", "404")); got != 2 {
		t.Errorf("month requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.InFlightGauge); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
}

func TestStatsReadAtScrape(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := &countingCache{}
	RegisterCacheStats(reg, c)

	c.hits = 7
	c.size = 2

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	for _, want := range []string{"feedtrend_month_cache_hits_total 7", "feedtrend_month_cache_entries 2"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}

type fakeCache struct{}

func (fakeCache) Stats() (uint64, uint64) { return 0, 0 }
func (fakeCache) Size() int               { return 0 }

type countingCache struct {
	hits, misses uint64
	size         int
}

func (c *countingCache) Stats() (uint64, uint64) { return c.hits, c.misses }
func (c *countingCache) Size() int               { return c.size }
