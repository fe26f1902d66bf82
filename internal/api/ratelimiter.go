package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the per-client limiter table; it is reset when full.
const maxTrackedClients = 10_000

type rateLimiter interface {
	Allow(client string) bool
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newClientLimiter(ratePerSecond float64, burst int) *clientLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(ratePerSecond),
		burst:    burst,
	}
}

func (l *clientLimiter) Allow(client string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	limiter, ok := l.limiters[client]
	if !ok {
		if len(l.limiters) >= maxTrackedClients {
			clear(l.limiters)
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[client] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow(clientKey(r)) {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
