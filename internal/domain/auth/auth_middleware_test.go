package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func protectedEcho(t *testing.T, gotUserID *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok {
			t.Fatalf("user id missing from context inside protected handler")
		}
		*gotUserID = userID
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareBearer(t *testing.T) {
	tokens := NewJWTTokenManager([]byte("test-secret"), time.Hour, 24*time.Hour)
	pair, err := tokens.GenerateTokenPair("user-1", "m@example.com", "mengran")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	var gotUserID string
	handler := Middleware(tokens, nil, testLogger())(protectedEcho(t, &gotUserID))

	req := httptest.NewRequest("GET", "/api/trips", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", gotUserID)
	}
}

func TestMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	tokens := NewJWTTokenManager([]byte("test-secret"), time.Hour, 24*time.Hour)
	handler := Middleware(tokens, nil, testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("protected handler must not run")
	}))

	t.Run("no credential", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/trips", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/trips", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/trips", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestMiddlewareCookieFallback(t *testing.T) {
	tokens := NewJWTTokenManager([]byte("test-secret"), time.Hour, 24*time.Hour)
	pair, err := tokens.GenerateTokenPair("user-1", "m@example.com", "mengran")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	cookies := NewCookieManager([]byte("cookie-secret"), false)

	// Capture the session cookie from a login-style response.
	setRec := httptest.NewRecorder()
	setReq := httptest.NewRequest("POST", "/api/auth/login", nil)
	if err := cookies.SetSession(setRec, setReq, pair.AccessToken, "user-1"); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	var gotUserID string
	handler := Middleware(tokens, cookies, testLogger())(protectedEcho(t, &gotUserID))

	req := httptest.NewRequest("GET", "/api/trips", nil)
	for _, c := range setRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via cookie credential, got %d", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", gotUserID)
	}
}

func TestCookieManagerClearSession(t *testing.T) {
	cookies := NewCookieManager([]byte("cookie-secret"), false)

	setRec := httptest.NewRecorder()
	if err := cookies.SetSession(setRec, httptest.NewRequest("POST", "/", nil), "tok", "user-1"); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	var loggedIn *http.Cookie
	for _, c := range setRec.Result().Cookies() {
		if c.Name == "isLoggedIn" {
			loggedIn = c
		}
	}
	if loggedIn == nil || loggedIn.Value != "true" {
		t.Fatalf("expected readable isLoggedIn cookie, got %+v", loggedIn)
	}
	if loggedIn.HttpOnly {
		t.Fatalf("isLoggedIn must be readable by the UI")
	}

	clearRec := httptest.NewRecorder()
	clearReq := httptest.NewRequest("POST", "/", nil)
	for _, c := range setRec.Result().Cookies() {
		clearReq.AddCookie(c)
	}
	if err := cookies.ClearSession(clearRec, clearReq); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}

	for _, c := range clearRec.Result().Cookies() {
		if c.Name == "isLoggedIn" && c.MaxAge >= 0 {
			t.Fatalf("expected isLoggedIn to be expired, got MaxAge=%d", c.MaxAge)
		}
	}
}
