package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTTokenManager([]byte("test-secret"), time.Hour, 24*time.Hour)

	pair, err := m.GenerateTokenPair("user-1", "m@example.com", "mengran")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", pair.TokenType)
	}

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "m@example.com" || claims.Username != "mengran" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestTokenAudienceSeparation(t *testing.T) {
	m := NewJWTTokenManager([]byte("test-secret"), time.Hour, 24*time.Hour)
	pair, err := m.GenerateTokenPair("user-1", "m@example.com", "mengran")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	if _, err := m.ValidateAccessToken(pair.RefreshToken); err == nil {
		t.Fatalf("refresh token accepted as access token")
	}
	if _, err := m.ValidateRefreshToken(pair.AccessToken); err == nil {
		t.Fatalf("access token accepted as refresh token")
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTTokenManager([]byte("secret-a"), time.Hour, 24*time.Hour)
	verifier := NewJWTTokenManager([]byte("secret-b"), time.Hour, 24*time.Hour)

	pair, err := issuer.GenerateTokenPair("user-1", "m@example.com", "mengran")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	if _, err := verifier.ValidateAccessToken(pair.AccessToken); err == nil {
		t.Fatalf("token signed with a different secret accepted")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	m := NewJWTTokenManager([]byte("test-secret"), -time.Minute, 24*time.Hour)

	pair, err := m.GenerateTokenPair("user-1", "m@example.com", "mengran")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	if _, err := m.ValidateAccessToken(pair.AccessToken); err == nil {
		t.Fatalf("expired token accepted")
	}
}
