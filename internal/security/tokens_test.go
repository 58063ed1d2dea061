package security

import (
	"errors"
	"testing"
	"time"
)

func newTestCodec() *TokenCodec {
	return NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), "taskhub-auth", "taskhub-api")
}

func TestTokenCodec_IssueAndDecode(t *testing.T) {
	c := newTestCodec()

	token, jti, exp, err := c.Issue("u1", TokenTypeAccess, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" || jti == "" {
		t.Fatal("token or jti empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", claims.UserID)
	}
	if claims.Type != TokenTypeAccess {
		t.Errorf("Type = %q, want access", claims.Type)
	}
	if claims.JTI != jti {
		t.Errorf("JTI = %q, want %q", claims.JTI, jti)
	}
	if !claims.ExpiresAt.Equal(exp.Truncate(time.Second)) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, exp.Truncate(time.Second))
	}
}

func TestTokenCodec_RefreshType(t *testing.T) {
	c := newTestCodec()
	token, _, _, err := c.Issue("u1", TokenTypeRefresh, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Type != TokenTypeRefresh {
		t.Errorf("Type = %q, want refresh", claims.Type)
	}
}

func TestTokenCodec_JTIUnique(t *testing.T) {
	c := newTestCodec()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		_, jti, _, err := c.Issue("u1", TokenTypeAccess, time.Minute)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if seen[jti] {
			t.Fatalf("duplicate jti %q", jti)
		}
		seen[jti] = true
	}
}

func TestTokenCodec_DecodeMalformed(t *testing.T) {
	c := newTestCodec()
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := c.Decode(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Decode(%q): want ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestTokenCodec_DecodeExpired(t *testing.T) {
	c := newTestCodec()
	token, _, _, err := c.Issue("u1", TokenTypeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := c.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_DecodeWrongKey(t *testing.T) {
	c := newTestCodec()
	other := NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), "taskhub-auth", "taskhub-api")
	token, _, _, err := other.Issue("u1", TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := c.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong key: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_DecodeWrongIssuerAudience(t *testing.T) {
	c := newTestCodec()

	wrongIss := NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), "other-issuer", "taskhub-api")
	token, _, _, err := wrongIss.Issue("u1", TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := c.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}

	wrongAud := NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), "taskhub-auth", "other-api")
	token, _, _, err = wrongAud.Issue("u1", TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := c.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong audience: want ErrInvalidToken, got %v", err)
	}
}
