package security

import (
	"testing"
)

func TestHashRefreshToken(t *testing.T) {
	token := "refresh-token-123"
	hash1 := HashRefreshToken(token)
	hash2 := HashRefreshToken(token)

	if hash1 != hash2 {
		t.Errorf("HashRefreshToken not deterministic: %q vs %q", hash1, hash2)
	}
	if len(hash1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(hash1))
	}
	if HashRefreshToken("other-token") == hash1 {
		t.Error("different tokens produced the same hash")
	}
}

func TestRefreshTokenHashEqual(t *testing.T) {
	token := "refresh-token-456"
	stored := HashRefreshToken(token)

	if !RefreshTokenHashEqual(token, stored) {
		t.Error("should match the correct token")
	}
	if RefreshTokenHashEqual("wrong-token", stored) {
		t.Error("should reject a wrong token")
	}
	if RefreshTokenHashEqual(token, "a"+stored[1:]) {
		t.Error("should reject a hash with different content")
	}
	if RefreshTokenHashEqual(token, stored+"00") {
		t.Error("should reject a hash with different length")
	}
	if RefreshTokenHashEqual("", "") {
		t.Error("should not match empty inputs")
	}
}
