package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, exp int64) string {
	t.Helper()
	token, err := SignJWT(secret, TokenClaims{Sub: "user-1", Exp: exp})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerifyJWT(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()

	t.Run("roundtrip", func(t *testing.T) {
		token := signedToken(t, testSecret, future)
		claims, err := VerifyJWT(testSecret, token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.Sub != "user-1" {
			t.Fatalf("sub = %q", claims.Sub)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signedToken(t, "other-secret", future)
		if _, err := VerifyJWT(testSecret, token); err == nil {
			t.Fatal("expected signature error")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token := signedToken(t, testSecret, time.Now().Add(-time.Minute).Unix())
		if _, err := VerifyJWT(testSecret, token); err == nil {
			t.Fatal("expected expiry error")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := VerifyJWT(testSecret, "not.a.token.at.all"); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestAuthJWTMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := UserIDFromContext(r.Context()); got != "user-1" {
			t.Fatalf("user id in context = %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthJWT(testSecret)(next)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, time.Now().Add(time.Hour).Unix()))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("bad scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, time.Now().Add(time.Hour).Unix())+"x")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
