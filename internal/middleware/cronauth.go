package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// CronAuth returns a middleware that guards the task endpoints with a shared
// bearer secret. An external scheduler presents the secret on every call.
func CronAuth(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeForbidden(w, "task endpoints are disabled")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeForbidden(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeForbidden(w, "invalid authorization header format")
				return
			}

			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) != 1 {
				writeForbidden(w, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"` + detail + `"}`))
}
