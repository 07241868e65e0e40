// Package auth resolves the authenticated caller for each request. Real
// authentication is terminated upstream by the platform gateway; this
// package only maps the request to a verified profile id and makes it
// available on the context. Profile ids from request bodies are never
// trusted.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Authenticator resolves a request to the profile id of its caller.
type Authenticator interface {
	Authenticate(r *http.Request) (uuid.UUID, error)
}

var ErrUnauthenticated = errors.New("authentication required")

type contextKey struct{}

// ProfileID returns the authenticated profile id stored by Middleware.
func ProfileID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return id, ok
}

// WithProfileID is exported for tests that exercise handlers directly.
func WithProfileID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware authenticates every request and injects the profile id into
// the context. Requests that cannot be resolved get a 401 and never reach
// the handler.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID, err := a.Authenticate(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Authorization required"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithProfileID(r.Context(), profileID)))
		})
	}
}

// GatewayAuthenticator trusts the profile header stamped by the platform
// gateway after it has verified the bearer token. Must only be deployed
// behind that gateway.
type GatewayAuthenticator struct {
	Header string
}

func NewGatewayAuthenticator() *GatewayAuthenticator {
	return &GatewayAuthenticator{Header: "X-Profile-ID"}
}

func (g *GatewayAuthenticator) Authenticate(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(g.Header)
	if raw == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}
