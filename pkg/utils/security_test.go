package utils

import (
	"errors"
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("abcdef")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "abcdef" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword("abcdef", hash) {
		t.Error("expected matching password to verify")
	}
	if VerifyPassword("abcdeg", hash) {
		t.Error("expected wrong password to fail")
	}

	again, _ := HashPassword("abcdef")
	if again == hash {
		t.Error("hashes of the same password should be salted differently")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, claims, err := GenerateToken(secret, "vidshare", time.Hour, 42, "User123")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected token id to be set")
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if parsed.UserID != 42 || parsed.Username != "User123" || parsed.ID != claims.ID {
		t.Errorf("parsed claims = %+v", parsed)
	}
}

func TestParseTokenRejectsBadTokens(t *testing.T) {
	secret := []byte("test-secret")

	token, _, err := GenerateToken(secret, "vidshare", time.Hour, 1, "a")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken([]byte("other"), token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v, want ErrInvalidToken", err)
	}
	if _, err := ParseToken(secret, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: err = %v, want ErrInvalidToken", err)
	}

	expired, _, err := GenerateToken(secret, "vidshare", -time.Minute, 1, "a")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(secret, expired); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expired: err = %v, want ErrExpiredToken", err)
	}
}
