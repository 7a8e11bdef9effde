package middleware

import (
	"log"
	"net/http"

	"community-tickets/internal/utils"
)

// AdminKeyMiddleware guards the admin console API with a shared key.
// The request carries the key in the X-Admin-Key header; only its
// Argon2id hash is configured on the server.
func AdminKeyMiddleware(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				log.Println("Admin API request rejected: no admin key configured")
				http.Error(w, "admin access is not configured", http.StatusForbidden)
				return
			}

			key := r.Header.Get("X-Admin-Key")
			if key == "" {
				http.Error(w, "admin key required", http.StatusUnauthorized)
				return
			}

			ok, err := utils.VerifyCredential(key, keyHash)
			if err != nil || !ok {
				http.Error(w, "invalid admin key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
