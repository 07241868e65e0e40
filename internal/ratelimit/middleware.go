package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/carebow/triage-engine/internal/auth"
	"github.com/carebow/triage-engine/internal/platform/logger"
)

// Middleware enforces the limiter keyed by caller identity and route. On
// limiter backend failure the request is allowed through: availability of
// the triage surface outranks strict accounting.
func Middleware(limiter Limiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := clientIdentity(r)
			key := identity + ":" + r.URL.Path

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				log.Warn("rate limit exceeded", "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      "Rate limit exceeded. Please try again later.",
					"retryAfter": int(time.Until(result.ResetAt).Seconds()),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIdentity prefers the authenticated profile id and falls back to the
// forwarded client address for unauthenticated routes.
func clientIdentity(r *http.Request) string {
	if id, ok := auth.ProfileID(r.Context()); ok {
		return id.String()
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
