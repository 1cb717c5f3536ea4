package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/menezmethod/mwpriority/internal/apierror"
	"github.com/menezmethod/mwpriority/internal/auth"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const apiKeyContextKey contextKey = "api_key"

// Auth returns middleware that validates the caller's API key against the
// KeyStore. The key is read from "Authorization: Bearer <key>" or, failing
// that, from X-API-Key. Rejected requests get a 401 error envelope.
func Auth(ks *auth.KeyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := extractKey(r)
			if !ok {
				apierror.Write(w, apierror.Unauthorized("Missing API key. Expected: Authorization: Bearer <api_key>"))
				return
			}

			if err := ks.Validate(key); err != nil {
				apierror.Write(w, apierror.Unauthorized("Invalid API key."))
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyFromContext retrieves the authenticated API key from the request context.
func APIKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(apiKeyContextKey).(string)
	return key
}

// extractKey returns the Bearer token, or the X-API-Key header when no
// Authorization header is present.
func extractKey(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		key := strings.TrimSpace(r.Header.Get("X-API-Key"))
		return key, key != ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}

	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}
