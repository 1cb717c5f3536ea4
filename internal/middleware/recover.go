package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/menezmethod/mwpriority/internal/apierror"
)

// Recover returns middleware that turns a panic in anything ranked after it
// into a logged stack trace and a 500 error envelope. A panic in middleware
// ranked ahead of recover reaches net/http instead, and the log line carries
// a request ID only when request_id outranks recover.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", RequestIDFromContext(r.Context()),
					)
					apierror.Write(w, apierror.Internal("Internal server error."))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
