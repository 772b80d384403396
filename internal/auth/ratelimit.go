package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client key.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond per key with
// the given burst.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// DefaultRateLimiter allows 10 requests per second with a burst of 20.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(10, 20)
}

// Allow reports whether a request for key may proceed now.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	c, ok := r.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(r.rate, r.burst)}
		r.clients[key] = c
	}
	c.lastSeen = r.now()
	r.mu.Unlock()

	return c.limiter.Allow()
}

// Cleanup drops limiters idle for longer than maxAge and returns how many
// were removed.
func (r *RateLimiter) Cleanup(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	removed := 0
	for key, c := range r.clients {
		if !c.lastSeen.After(cutoff) {
			delete(r.clients, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// RateLimitMiddleware rejects requests over the per-client budget with 429.
// It must wrap the output of Middleware so authenticated callers are keyed
// by token; anonymous callers are keyed by client IP.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(rateLimitKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"jsonrpc": "2.0",
					"error": map[string]interface{}{
						"code":    -32029,
						"message": "Rate limit exceeded. Please slow down.",
					},
					"id": nil,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if id := TokenID(r.Context()); id != "" {
		return "token:" + id
	}
	return "ip:" + clientIP(r.RemoteAddr)
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
