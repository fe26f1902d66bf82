package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow(string) bool {
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestNewClientLimiterUsesDefaults(t *testing.T) {
	limiter := newClientLimiter(0, 0)
	if limiter == nil {
		t.Fatalf("expected limiter instance")
	}
	if !limiter.Allow("client") {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow("client") {
		t.Fatalf("expected burst of one to deny the second request")
	}
}

func TestClientLimiterIsolatesClients(t *testing.T) {
	limiter := newClientLimiter(1, 1)
	if !limiter.Allow("a") || !limiter.Allow("b") {
		t.Fatalf("expected each client to get its own bucket")
	}
	if limiter.Allow("a") {
		t.Fatalf("expected client a to be limited")
	}
}

func TestClientLimiterResetsWhenFull(t *testing.T) {
	limiter := newClientLimiter(1, 1)
	limiter.Allow("first")
	for i := range maxTrackedClients {
		limiter.limiters[string(rune(i+1000))] = nil
	}
	limiter.Allow("overflow")
	if got := len(limiter.limiters); got != 1 {
		t.Fatalf("expected table to be cleared, got %d entries", got)
	}
}

func TestClientKeyStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5123"
	if got := clientKey(req); got != "192.0.2.7" {
		t.Fatalf("expected host only, got %s", got)
	}
	req.RemoteAddr = "pipe"
	if got := clientKey(req); got != "pipe" {
		t.Fatalf("expected raw address fallback, got %s", got)
	}
}
