package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(rate float64, burst int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(rate, burst)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	rl, clock := newTestLimiter(1, 2)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("expected burst of 2 to be allowed")
	}
	if rl.Allow("a") {
		t.Fatalf("expected third request to be rejected")
	}
	if !rl.Allow("b") {
		t.Fatalf("expected other clients to have their own bucket")
	}

	clock.t = clock.t.Add(time.Second)
	if !rl.Allow("a") {
		t.Fatalf("expected a token after one second")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl, clock := newTestLimiter(1, 1)
	rl.Allow("old")
	clock.t = clock.t.Add(limiterIdleTTL + time.Second)
	rl.Allow("fresh")

	rl.Sweep()
	if rl.size() != 1 {
		t.Fatalf("expected idle bucket to be swept, have %d", rl.size())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(0.5, 1)
	handler := RateLimit(rl)(okHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/chat/message", nil)
	req.RemoteAddr = "10.0.0.7:51234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}

	other := httptest.NewRequest(http.MethodPost, "/chat/message", nil)
	other.RemoteAddr = "10.0.0.7:60000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the same host on another port to share a bucket, got %d", rec.Code)
	}
}
