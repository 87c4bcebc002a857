package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndCheckSecret(t *testing.T) {
	hash, err := HashSecret("hunter2")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	if hash == "hunter2" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if err := CheckSecret(hash, "hunter2"); err != nil {
		t.Fatalf("CheckSecret: %v", err)
	}
	if err := CheckSecret(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCheckSecret_EmptyHash(t *testing.T) {
	if err := CheckSecret("", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
