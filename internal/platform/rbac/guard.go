package rbac

import (
	"context"
	"fmt"

	"taskhub/backend/internal/access/engine"
	memdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/security"
	taskdomain "taskhub/backend/internal/task/domain"
	teamdomain "taskhub/backend/internal/team/domain"
)

// TeamGetter looks up a team by id. Returns (nil, nil) when absent.
type TeamGetter interface {
	GetByID(ctx context.Context, id string) (*teamdomain.Team, error)
}

// MembershipGetter looks up a membership by (team, user). Returns (nil, nil)
// when absent.
type MembershipGetter interface {
	GetByTeamAndUser(ctx context.Context, teamID, userID string) (*memdomain.Membership, error)
}

// Guard composes membership lookups with the access evaluator. Every check
// takes the acting Principal explicitly.
type Guard struct {
	teams       TeamGetter
	memberships MembershipGetter
	evaluator   engine.Evaluator
}

func NewGuard(teams TeamGetter, memberships MembershipGetter, evaluator engine.Evaluator) *Guard {
	return &Guard{teams: teams, memberships: memberships, evaluator: evaluator}
}

// RequireTeam returns the team or ErrTeamNotFound.
func (g *Guard) RequireTeam(ctx context.Context, teamID string) (*teamdomain.Team, error) {
	team, err := g.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

// RequireMembership returns the principal's membership in the team or
// ErrNotTeamMember.
func (g *Guard) RequireMembership(ctx context.Context, teamID string, p security.Principal) (*memdomain.Membership, error) {
	m, err := g.memberships.GetByTeamAndUser(ctx, teamID, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if m == nil {
		return nil, ErrNotTeamMember
	}
	return m, nil
}

// IsMember is a non-throwing membership probe.
func (g *Guard) IsMember(ctx context.Context, teamID string, userID string) (bool, error) {
	m, err := g.memberships.GetByTeamAndUser(ctx, teamID, userID)
	if err != nil {
		return false, fmt.Errorf("get membership: %w", err)
	}
	return m != nil, nil
}

// RequireTaskView checks that the principal may view the task.
func (g *Guard) RequireTaskView(ctx context.Context, p security.Principal, task *taskdomain.Task) error {
	return g.requireTaskAccess(ctx, p, task, engine.ActionView)
}

// RequireTaskMutate checks that the principal may update or delete the task.
func (g *Guard) RequireTaskMutate(ctx context.Context, p security.Principal, task *taskdomain.Task) error {
	return g.requireTaskAccess(ctx, p, task, engine.ActionMutate)
}

func (g *Guard) requireTaskAccess(ctx context.Context, p security.Principal, task *taskdomain.Task, action engine.Action) error {
	req := engine.AccessRequest{
		Action:    action,
		IsCreator: task.CreatorID == p.UserID,
	}
	if task.TeamID != "" {
		req.HasTeam = true
		m, err := g.memberships.GetByTeamAndUser(ctx, task.TeamID, p.UserID)
		if err != nil {
			return fmt.Errorf("get membership: %w", err)
		}
		if m != nil {
			req.IsMember = true
			req.Role = m.Role
		}
	}
	allowed, err := g.evaluator.EvaluateTaskAccess(ctx, task.TeamID, req)
	if err != nil {
		return fmt.Errorf("evaluate task access: %w", err)
	}
	if !allowed {
		return ErrUnauthorized
	}
	return nil
}
