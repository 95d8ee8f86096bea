package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// newTestLimiter runs on a fake clock. The cleanup loop is pushed out of
// reach so only explicit cleanups remove clients.
func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	cfg.Clock = clock
	cfg.CleanupInterval = 24 * time.Hour
	rl := NewLimiter(cfg)
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestAllow(t *testing.T) {
	rl, clock := newTestLimiter(t, Config{RequestsPerMinute: 2})

	for i := 0; i < 2; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request in the window should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own window")
	}

	clock.Advance(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("new window should reset the count")
	}
	if m := rl.GetMetrics(); m.TotalHits != 1 || m.ClientCount != 2 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, Config{})
	rl.Allow("1.2.3.4")
	clock.Advance(5 * time.Minute)
	rl.Allow("5.6.7.8")
	clock.Advance(6 * time.Minute)

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Fatalf("active = %d", rl.ActiveClients())
	}
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, Config{RequestsPerMinute: 1, Methods: []string{http.MethodPost}})
	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusOK},
		{http.MethodPost, http.StatusTooManyRequests},
		{http.MethodGet, http.StatusOK},
	}
	for i, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/uploads", nil))
		if rec.Code != tt.want {
			t.Errorf("request %d (%s): status = %d, want %d", i+1, tt.method, rec.Code, tt.want)
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
