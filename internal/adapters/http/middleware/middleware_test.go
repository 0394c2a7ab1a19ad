package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestRateLimiter_Allow tests the token bucket and refill.
func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IP denied")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Error("request after refill denied")
	}
}

// TestRateLimit_UsesHostOnly tests that the port does not split a client's bucket.
func TestRateLimit_UsesHostOnly(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Close()
	h := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i, addr := range []string{"192.0.2.1:1000", "192.0.2.1:2000"} {
		req := httptest.NewRequest("POST", "/api/contact", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		want := http.StatusOK
		if i == 1 {
			want = http.StatusTooManyRequests
		}
		if rr.Code != want {
			t.Errorf("request %d: status = %d, want %d", i, rr.Code, want)
		}
	}
}

// TestSecurityHeaders tests the static header set.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
}

// TestCSRF_RejectsFormPostWithoutToken tests form protection and the JSON exemption.
func TestCSRF_RejectsFormPostWithoutToken(t *testing.T) {
	key := make([]byte, 32)
	h := CSRF(key, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("POST", "/admin/projects", nil)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("form post status = %d, want 403", rr.Code)
	}

	req = httptest.NewRequest("POST", "/admin/projects", nil)
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("json post status = %d, want 200", rr.Code)
	}
}
