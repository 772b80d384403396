package auth

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	limiter := NewRateLimiter(0.1, 2)

	if !limiter.Allow("k") || !limiter.Allow("k") {
		t.Fatal("requests within burst should be allowed")
	}
	if limiter.Allow("k") {
		t.Error("request over burst should be rejected")
	}
	if !limiter.Allow("other") {
		t.Error("a different key should have its own bucket")
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(10000, 1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			limiter.Allow(string(rune('a' + i%5)))
		}(i)
	}
	wg.Wait()

	if got := limiter.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
}

func TestRateLimiter_CleanupDropsIdle(t *testing.T) {
	limiter := NewRateLimiter(10, 5)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("old")
	now = now.Add(10 * time.Minute)
	limiter.Allow("fresh")

	if removed := limiter.Cleanup(5 * time.Minute); removed != 1 {
		t.Errorf("Cleanup() removed %d, want 1", removed)
	}
	if limiter.Len() != 1 {
		t.Errorf("Len() = %d, want 1", limiter.Len())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/tools", http.NoBody)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:1111"); code != http.StatusOK {
		t.Fatalf("first request status = %d", code)
	}
	// Same host, different port shares the bucket.
	if code := send("10.0.0.1:2222"); code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", code)
	}
	if code := send("10.0.0.2:1111"); code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", code)
	}
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "192.0.2.7:5000"
	if got := rateLimitKey(req); got != "ip:192.0.2.7" {
		t.Errorf("anonymous key = %q", got)
	}

	req = req.WithContext(NewContext(req.Context(), &AuthContext{TokenID: "abcd...wxyz"}))
	if got := rateLimitKey(req); got != "token:abcd...wxyz" {
		t.Errorf("token key = %q", got)
	}
}
