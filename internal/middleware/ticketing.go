package middleware

import "net/http"

// TicketingEnabledMiddleware gates the checkout surface behind the
// ticketing feature flag. When sales are switched off the endpoints
// answer 503 so operators can drain traffic without a deploy.
func TicketingEnabledMiddleware(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				http.Error(w, "ticket sales are temporarily unavailable", http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
