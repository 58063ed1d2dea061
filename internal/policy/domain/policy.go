package domain

import "time"

// AccessPolicy is a per-team Rego policy overriding the built-in task access
// rules. Only enabled policies are evaluated.
type AccessPolicy struct {
	ID        string
	TeamID    string
	Name      string
	Rules     string // Rego source
	Enabled   bool
	CreatedAt time.Time
}
