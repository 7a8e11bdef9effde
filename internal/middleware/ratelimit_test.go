package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutRateLimiter(t *testing.T) {
	rl := NewCheckoutRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.IsAllowed("10.0.0.1"), "attempt %d should be allowed", i+1)
	}
	assert.False(t, rl.IsAllowed("10.0.0.1"), "fourth attempt should be blocked")

	// Other IPs are unaffected.
	assert.True(t, rl.IsAllowed("10.0.0.2"))
}

func TestCheckoutRateLimiterWindowExpiry(t *testing.T) {
	rl := NewCheckoutRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.IsAllowed("10.0.0.1"))
	assert.False(t, rl.IsAllowed("10.0.0.1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.IsAllowed("10.0.0.1"), "attempts outside the window should not count")
}

func TestCheckoutRateLimiterMiddleware(t *testing.T) {
	rl := NewCheckoutRateLimiter(1, time.Minute)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func() *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/checkout/payment-intent", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		handler.ServeHTTP(recorder, req)
		return recorder
	}

	assert.Equal(t, http.StatusOK, request().Code)
	assert.Equal(t, http.StatusTooManyRequests, request().Code)
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "127.0.0.1", clientIP(req))
}
