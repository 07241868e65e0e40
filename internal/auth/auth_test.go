package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGatewayAuthenticator(t *testing.T) {
	a := NewGatewayAuthenticator()
	profileID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Profile-ID", profileID.String())
	got, err := a.Authenticate(req)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if got != profileID {
		t.Fatalf("profile id = %v, want %v", got, profileID)
	}

	missing := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := a.Authenticate(missing); err != ErrUnauthenticated {
		t.Fatalf("missing header: err = %v", err)
	}

	malformed := httptest.NewRequest(http.MethodGet, "/", nil)
	malformed.Header.Set("X-Profile-ID", "not-a-uuid")
	if _, err := a.Authenticate(malformed); err != ErrUnauthenticated {
		t.Fatalf("malformed header: err = %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	a := NewGatewayAuthenticator()
	profileID := uuid.New()

	var seen uuid.UUID
	var seenOK bool
	h := Middleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = ProfileID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Profile-ID", profileID.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !seenOK || seen != profileID {
		t.Fatalf("handler saw profile id %v (ok=%v)", seen, seenOK)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Authorization required") {
		t.Fatalf("401 body = %s", rec.Body.String())
	}
}

func TestProfileID_AbsentByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ProfileID(req.Context()); ok {
		t.Fatalf("profile id present on a bare context")
	}
}
