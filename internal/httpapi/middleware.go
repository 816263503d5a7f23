package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hospital-onboarding/internal/auth"
	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/common/metrics"
)

type contextKey string

const principalKey contextKey = "principal"

// principalFrom returns the authenticated caller, if any.
func principalFrom(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(principalKey).(*auth.Principal)
	return p
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe logs each request and feeds the prometheus counters, keyed by the
// chi route pattern rather than the raw path.
func observe(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			duration := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

			log.Info("http request", map[string]interface{}{
				"method":   r.Method,
				"route":    route,
				"status":   rec.status,
				"duration": duration.String(),
			})
		})
	}
}

// Authenticator resolves bearer tokens; satisfied by auth.SessionStore.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
}

// authenticate requires a valid bearer token and stores the principal on the
// request context.
func authenticate(sessions Authenticator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				writeError(w, log, apperr.Unauthorized("missing bearer token"))
				return
			}

			principal, err := sessions.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requirePermission gates a route on the principal's role grants.
func requirePermission(perm auth.Permission, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := principalFrom(r.Context())
			if principal == nil {
				writeError(w, log, apperr.Unauthorized("no session"))
				return
			}
			if !principal.Can(perm) {
				writeError(w, log, apperr.Forbidden(string(perm), "access"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
