package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testSessionKey = "0123456789abcdef0123456789abcdef" // 32 chars, fine for tests

func testSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(testSessionKey, "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return sm
}

func TestNewSessionManager_KeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		secure  bool
		wantErr bool
	}{
		{"empty key", "", false, true},
		{"weak key allowed in dev", "short", false, false},
		{"weak key rejected in production", "short", true, true},
		{"default key rejected in production", "change-me-change-me-change-me-xx", true, true},
		{"strong key in production", testSessionKey, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSessionManager(tt.key, "", "", time.Hour, tt.secure, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSessionManager() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionManager_SignInOut(t *testing.T) {
	sm := testSessionManager(t)

	// Sign in and capture the cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/console/login", nil)
	if err := sm.SignIn(rec, req); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn() should set a session cookie")
	}

	// The cookie authenticates a follow-up request.
	req2 := httptest.NewRequest(http.MethodGet, "/console", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	if !sm.IsSignedIn(req2) {
		t.Error("IsSignedIn() = false after SignIn")
	}

	// Sign out clears it.
	rec3 := httptest.NewRecorder()
	sm.SignOut(rec3, req2)
	found := false
	for _, c := range rec3.Result().Cookies() {
		if c.Name == sm.SessionName() && c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Error("SignOut() should expire the session cookie")
	}
}

func TestSessionManager_NoSession(t *testing.T) {
	sm := testSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	if sm.IsSignedIn(req) {
		t.Error("IsSignedIn() = true for request without a session")
	}
}

func TestRequireOperator(t *testing.T) {
	sm := testSessionManager(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := sm.RequireOperator(next)

	t.Run("unauthenticated API caller gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/console", nil)
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unauthenticated browser redirected to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/console", nil)
		req.Header.Set("Accept", "text/html")
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want 303", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc == "" {
			t.Error("redirect should carry a Location header")
		}
	})

	t.Run("signed-in operator passes", func(t *testing.T) {
		signInRec := httptest.NewRecorder()
		signInReq := httptest.NewRequest(http.MethodPost, "/console/login", nil)
		if err := sm.SignIn(signInRec, signInReq); err != nil {
			t.Fatalf("SignIn() error = %v", err)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/console", nil)
		for _, c := range signInRec.Result().Cookies() {
			req.AddCookie(c)
		}
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestAPIKeyAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := APIKeyAuth("test-api-key-value", zap.NewNop())(next)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid key", "Bearer test-api-key-value", http.StatusOK},
		{"wrong key", "Bearer wrong", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic test-api-key-value", http.StatusUnauthorized},
		{"case-insensitive scheme", "bearer test-api-key-value", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/site/restaurant/r1", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAPIKeyAuth_Unconfigured(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := APIKeyAuth("", zap.NewNop())(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/site/restaurant/r1", nil)
	req.Header.Set("Authorization", "Bearer anything")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when no key is configured", rec.Code)
	}
}
