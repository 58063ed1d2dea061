package engine

import "context"

// RoleEvaluator implements the built-in task access rules:
//
//   - a task with no team is visible and mutable only by its creator;
//   - a team task is visible to any team member;
//   - a MEMBER may mutate only team tasks they personally created;
//   - ADMIN and OWNER may mutate any task in the team.
type RoleEvaluator struct{}

// NewRoleEvaluator returns the built-in rule evaluator.
func NewRoleEvaluator() *RoleEvaluator {
	return &RoleEvaluator{}
}

// EvaluateTaskAccess applies the built-in rules. It never returns an error.
func (RoleEvaluator) EvaluateTaskAccess(_ context.Context, _ string, req AccessRequest) (bool, error) {
	if !req.HasTeam {
		return req.IsCreator, nil
	}
	if !req.IsMember {
		return false, nil
	}
	if req.Action == ActionView {
		return true, nil
	}
	if req.Role.CanManageMembers() {
		return true, nil
	}
	return req.IsCreator, nil
}
