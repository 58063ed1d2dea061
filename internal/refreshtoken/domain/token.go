package domain

import "time"

// StoredRefreshToken is the persisted record of an issued refresh token.
// The raw token is never stored; TokenHash is a SHA-256 digest of it.
// Lifecycle: created on login or rotation, marked revoked (RevokedAt set,
// ReplacedByJti set) on successful rotation or logout, never mutated after
// that. Expired and revoked rows are garbage-collected by the sweep.
type StoredRefreshToken struct {
	ID            string
	UserID        string
	Jti           string
	TokenHash     string
	ExpiresAt     time.Time
	RevokedAt     *time.Time // nil when not revoked
	ReplacedByJti string     // jti of the successor token; empty until rotated
	CreatedAt     time.Time
}

// Revoked reports whether the token has been revoked.
func (t *StoredRefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the token's expiry has passed at the given instant.
func (t *StoredRefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
