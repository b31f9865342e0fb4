package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"gatekeeper/internal/models"
	"gatekeeper/internal/ratelimit"

	"github.com/google/uuid"
)

// AuthUserHeader is stamped by the platform's auth layer with the verified
// user id. It is honored only when the deployment declares that layer
// trusted; otherwise any client could claim any identity.
const AuthUserHeader = "X-Auth-User"

// authContextMiddleware copies the trusted auth header into the request
// context for the identity resolver. When trust is off the header is
// stripped so it cannot leak upstream as an apparent gateway assertion.
func authContextMiddleware(trust bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(AuthUserHeader)
			if !trust {
				r.Header.Del(AuthUserHeader)
				next.ServeHTTP(w, r)
				return
			}
			if userID != "" {
				r = r.WithContext(ratelimit.WithUser(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests with a per-request id.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		slog.Info("HTTP request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ratelimit.ClientIP(r),
		)
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered", "error", err, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				errorResp := models.NewErrorResponse("Internal server error", models.ErrorCodeInternalError)
				json.NewEncoder(w).Encode(errorResp)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
