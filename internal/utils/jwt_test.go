package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "user-1", "user", 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, err := ParseToken("s3cret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Subject != "user-1" || c.Role != "user" || c.Master != "" {
		t.Fatalf("unexpected claims %+v", c)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tok, _ := NewAccessToken("a", "user-1", "user", 5)
	if _, err := ParseToken("b", tok.Token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok, _ := NewAccessToken("s", "user-1", "user", -1)
	if _, err := ParseToken("s", tok.Token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenRejectsNoneAlg(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := ParseToken("s", raw); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestMasterTokenCarriesFingerprint(t *testing.T) {
	tok, err := NewMasterToken("s", "admin@site.io", "pw", 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, err := ParseToken("s", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !MatchFingerprint(c.Master, MasterFingerprint("admin@site.io", "pw")) {
		t.Fatalf("fingerprint mismatch")
	}
	if MatchFingerprint(c.Master, MasterFingerprint("admin@site.io", "rotated")) {
		t.Fatalf("rotated password must not match")
	}
}

func TestHashRefreshRawIsStable(t *testing.T) {
	if HashRefreshRaw("abc") != HashRefreshRaw("abc") || len(HashRefreshRaw("abc")) != 64 {
		t.Fatalf("unexpected hash")
	}
}

func TestPasswordHashAndPolicy(t *testing.T) {
	hash, err := HashPassword("correct-horse", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "correct-horse") {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword(hash, "wrong-horse") {
		t.Fatalf("wrong password must not verify")
	}
	if err := CheckPassword("short"); err != ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := CheckPassword("long-enough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
