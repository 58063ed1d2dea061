package domain

import "time"

// AuditLog is one recorded security-relevant action. Metadata carries
// short free-form detail about the action and may be empty.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
