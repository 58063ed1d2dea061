// Package engine evaluates task access decisions. The built-in RoleEvaluator
// implements the fixed role rules; OPAEvaluator lets a team override them with
// Rego policies whose default module reproduces the built-in behavior.
package engine

import (
	"context"

	"taskhub/backend/internal/membership/domain"
)

// Action is the kind of access being requested on a task.
type Action string

const (
	ActionView   Action = "view"
	ActionMutate Action = "mutate"
)

// AccessRequest describes one task access decision. Role and IsMember are
// meaningful only when HasTeam is true.
type AccessRequest struct {
	Action    Action
	HasTeam   bool
	IsMember  bool
	Role      domain.Role
	IsCreator bool
}

// Evaluator decides task access. teamID identifies the team whose policies
// apply; it is empty for personal tasks.
type Evaluator interface {
	// EvaluateTaskAccess reports whether the request is allowed. A denial is
	// (false, nil); (false, err) means no decision was reached. Implementations
	// may decide with the built-in role rules when a custom policy fails to
	// evaluate rather than returning an error.
	EvaluateTaskAccess(ctx context.Context, teamID string, req AccessRequest) (bool, error)
}
