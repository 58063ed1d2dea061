// Package rbac holds the team role policy (pure decision functions) and the
// access guard that composes it with membership lookups. Policy functions do
// no I/O; the guard takes an explicit security.Principal, never ambient state.
package rbac

import (
	"errors"
	"fmt"

	"taskhub/backend/internal/membership/domain"
)

// Sentinel errors; the HTTP layer maps ErrUnauthorized to 403 and the
// not-found errors to 404. Specific denials wrap ErrUnauthorized so callers
// can branch with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTeamNotFound = errors.New("team not found")
	ErrTaskNotFound = errors.New("task not found")

	ErrNotTeamMember         = fmt.Errorf("%w: you are not a member of this team", ErrUnauthorized)
	ErrOnlyOwnerAssignsOwner = fmt.Errorf("%w: only the owner can assign a new owner", ErrUnauthorized)
	ErrOnlyOwnerEditsOwner   = fmt.Errorf("%w: only the owner can modify an owner's membership", ErrUnauthorized)
	ErrOwnerSelfDemotion     = fmt.Errorf("%w: owner cannot demote themselves", ErrUnauthorized)
	ErrCannotManageMembers   = fmt.Errorf("%w: only the owner or admins can manage team members", ErrUnauthorized)
)

// CanManageMembers reports whether a member with the given role may add,
// remove, or re-role team members.
func CanManageMembers(role domain.Role) bool {
	return role.CanManageMembers()
}

// ValidateRoleChange decides whether actor (holding actorRole in the team) may
// set target's role (currently targetRole) to newRole. Pure function, no I/O.
//
// The self-demotion rule is what keeps every team at exactly one owner: there
// is no other path that reassigns ownership atomically.
func ValidateRoleChange(actorID string, actorRole domain.Role, targetID string, targetRole domain.Role, newRole domain.Role) error {
	if !actorRole.IsOwner() && newRole.IsOwner() {
		return ErrOnlyOwnerAssignsOwner
	}
	if targetRole.IsOwner() && !actorRole.IsOwner() {
		return ErrOnlyOwnerEditsOwner
	}
	if actorRole.IsOwner() && actorID == targetID && !newRole.IsOwner() {
		return ErrOwnerSelfDemotion
	}
	return nil
}
