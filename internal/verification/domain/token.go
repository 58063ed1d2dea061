package domain

import "time"

// DefaultTTL is how long a verification token stays valid after issuance.
const DefaultTTL = 24 * time.Hour

// VerificationToken is a single-use email verification token. The token value
// itself is the lookup key; rows are deleted on use or by the sweep once expired.
type VerificationToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's expiry has passed at the given instant.
func (t *VerificationToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
