package domain

import (
	"time"
)

// Membership links a user to a team with a role. (TeamID, UserID) is unique:
// a user holds at most one role per team.
type Membership struct {
	ID        string
	TeamID    string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// Role is a team role. Every team has exactly one OWNER at all times.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// CanManageMembers reports whether the role may add, remove, or re-role team members.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// IsOwner reports whether the role is OWNER.
func (r Role) IsOwner() bool {
	return r == RoleOwner
}
