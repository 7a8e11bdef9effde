package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// CheckoutRateLimiter limits how often one IP can start a checkout.
// Payment-intent creation reserves inventory, so unthrottled retries
// could hold an event's tickets hostage.
type CheckoutRateLimiter struct {
	attempts    map[string][]time.Time
	mutex       sync.Mutex
	maxAttempts int
	window      time.Duration
}

// NewCheckoutRateLimiter creates a new checkout rate limiter
func NewCheckoutRateLimiter(maxAttempts int, window time.Duration) *CheckoutRateLimiter {
	rl := &CheckoutRateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
	}

	go rl.cleanup()

	return rl
}

// IsAllowed checks if a checkout attempt from the given IP is allowed
// and records it when it is
func (rl *CheckoutRateLimiter) IsAllowed(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	var recent []time.Time
	for _, attempt := range rl.attempts[ip] {
		if attempt.After(cutoff) {
			recent = append(recent, attempt)
		}
	}

	if len(recent) >= rl.maxAttempts {
		rl.attempts[ip] = recent
		return false
	}

	rl.attempts[ip] = append(recent, now)
	return true
}

// cleanup periodically drops IPs with no recent attempts
func (rl *CheckoutRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		cutoff := time.Now().Add(-rl.window)
		for ip, attempts := range rl.attempts {
			var recent []time.Time
			for _, attempt := range attempts {
				if attempt.After(cutoff) {
					recent = append(recent, attempt)
				}
			}
			if len(recent) == 0 {
				delete(rl.attempts, ip)
			} else {
				rl.attempts[ip] = recent
			}
		}
		rl.mutex.Unlock()
	}
}

// Middleware applies the rate limit to an HTTP handler chain
func (rl *CheckoutRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.IsAllowed(clientIP(r)) {
			http.Error(w, "too many checkout attempts, please wait a moment", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the caller's IP, preferring the proxy header
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
