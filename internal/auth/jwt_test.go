package auth

import (
	"testing"
	"time"
)

func TestCreateAndVerifyToken(t *testing.T) {
	cfg := TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"}
	tok, err := CreateToken("owner-1", cfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := VerifyToken(tok, cfg)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.OwnerID != "owner-1" {
		t.Fatalf("expected owner-1, got %q", claims.OwnerID)
	}
	if claims.Subject != "owner-1" {
		t.Fatalf("expected subject owner-1, got %q", claims.Subject)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	cfg := TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"}
	tok, err := CreateToken("owner-1", cfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	_, err = VerifyToken(tok, TokenConfig{Secret: "wrong", Expiry: time.Hour, Issuer: "test"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestVerifyToken_WrongIssuer(t *testing.T) {
	tok, err := CreateToken("owner-1", TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "other"})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if _, err := VerifyToken(tok, DefaultTokenConfig("secret")); err == nil {
		t.Fatalf("expected issuer mismatch error")
	}
}

func TestCreateToken_InvalidInput(t *testing.T) {
	if _, err := CreateToken("owner-1", TokenConfig{Secret: "secret", Expiry: -time.Second}); err == nil {
		t.Fatalf("expected expiry error")
	}
	if _, err := CreateToken("", DefaultTokenConfig("secret")); err == nil {
		t.Fatalf("expected owner error")
	}
	if _, err := CreateToken("owner-1", DefaultTokenConfig("")); err == nil {
		t.Fatalf("expected secret error")
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	if _, err := VerifyToken("not-a-token", DefaultTokenConfig("secret")); err == nil {
		t.Fatalf("expected error")
	}
}
