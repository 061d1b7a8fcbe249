package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/townlocal/minisite/internal/app/system/auth"
)

// csrfTokenKey matches the key used by gorilla/csrf internally.
// This allows us to inject a mock token for testing.
const csrfTokenKey = "gorilla.csrf.Token"

// WithCSRFToken adds a mock CSRF token to the request context.
// This prevents panics or empty tokens when handlers call csrf.Token(r)
// while rendering forms.
//
// Usage:
//
//	req := httptest.NewRequest(http.MethodGet, "/path", nil)
//	req = testutil.WithCSRFToken(req)
//	handler.ServeHTTP(rec, req)
func WithCSRFToken(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenKey, "test-csrf-token-12345")
	return r.WithContext(ctx)
}

// OperatorRequestWithCSRF creates a signed-in operator request with a CSRF
// token in context, for testing handlers that render forms.
func OperatorRequestWithCSRF(t *testing.T, sm *auth.SessionManager, method, target string) *http.Request {
	t.Helper()
	return WithCSRFToken(OperatorRequest(t, sm, method, target))
}
