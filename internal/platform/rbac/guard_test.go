package rbac

import (
	"context"
	"errors"
	"testing"

	"taskhub/backend/internal/access/engine"
	memdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/security"
	taskdomain "taskhub/backend/internal/task/domain"
	teamdomain "taskhub/backend/internal/team/domain"
)

type memTeams struct {
	teams map[string]*teamdomain.Team
}

func (m *memTeams) GetByID(_ context.Context, id string) (*teamdomain.Team, error) {
	return m.teams[id], nil
}

type memMemberships struct {
	roles map[string]memdomain.Role // key teamID+"/"+userID
}

func (m *memMemberships) GetByTeamAndUser(_ context.Context, teamID, userID string) (*memdomain.Membership, error) {
	role, ok := m.roles[teamID+"/"+userID]
	if !ok {
		return nil, nil
	}
	return &memdomain.Membership{TeamID: teamID, UserID: userID, Role: role}, nil
}

func newTestGuard() *Guard {
	teams := &memTeams{teams: map[string]*teamdomain.Team{
		"t1": {ID: "t1", Name: "team one"},
	}}
	memberships := &memMemberships{roles: map[string]memdomain.Role{
		"t1/owner":  memdomain.RoleOwner,
		"t1/admin":  memdomain.RoleAdmin,
		"t1/member": memdomain.RoleMember,
	}}
	return NewGuard(teams, memberships, engine.NewRoleEvaluator())
}

func principal(userID string) security.Principal {
	return security.Principal{UserID: userID}
}

func TestGuard_RequireTeam(t *testing.T) {
	g := newTestGuard()
	ctx := context.Background()

	team, err := g.RequireTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("RequireTeam: %v", err)
	}
	if team.ID != "t1" {
		t.Errorf("team ID = %q, want t1", team.ID)
	}

	if _, err := g.RequireTeam(ctx, "missing"); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("missing team: want ErrTeamNotFound, got %v", err)
	}
}

func TestGuard_RequireMembership(t *testing.T) {
	g := newTestGuard()
	ctx := context.Background()

	m, err := g.RequireMembership(ctx, "t1", principal("admin"))
	if err != nil {
		t.Fatalf("RequireMembership: %v", err)
	}
	if m.Role != memdomain.RoleAdmin {
		t.Errorf("role = %q, want ADMIN", m.Role)
	}

	if _, err := g.RequireMembership(ctx, "t1", principal("outsider")); !errors.Is(err, ErrNotTeamMember) {
		t.Errorf("outsider: want ErrNotTeamMember, got %v", err)
	}
}

func TestGuard_IsMember(t *testing.T) {
	g := newTestGuard()
	ctx := context.Background()

	ok, err := g.IsMember(ctx, "t1", "member")
	if err != nil || !ok {
		t.Fatalf("IsMember(member) = %v, %v; want true, nil", ok, err)
	}
	ok, err = g.IsMember(ctx, "t1", "outsider")
	if err != nil || ok {
		t.Fatalf("IsMember(outsider) = %v, %v; want false, nil", ok, err)
	}
}

func TestGuard_PersonalTaskAccess(t *testing.T) {
	g := newTestGuard()
	ctx := context.Background()
	task := &taskdomain.Task{ID: "task1", CreatorID: "member"}

	if err := g.RequireTaskView(ctx, principal("member"), task); err != nil {
		t.Errorf("creator view: %v", err)
	}
	if err := g.RequireTaskMutate(ctx, principal("member"), task); err != nil {
		t.Errorf("creator mutate: %v", err)
	}
	if err := g.RequireTaskView(ctx, principal("owner"), task); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-creator view of personal task: want ErrUnauthorized, got %v", err)
	}
}

func TestGuard_TeamTaskAccess(t *testing.T) {
	g := newTestGuard()
	ctx := context.Background()
	task := &taskdomain.Task{ID: "task1", CreatorID: "member", TeamID: "t1"}

	for _, uid := range []string{"owner", "admin", "member"} {
		if err := g.RequireTaskView(ctx, principal(uid), task); err != nil {
			t.Errorf("%s view: %v", uid, err)
		}
	}
	if err := g.RequireTaskView(ctx, principal("outsider"), task); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("outsider view: want ErrUnauthorized, got %v", err)
	}

	if err := g.RequireTaskMutate(ctx, principal("member"), task); err != nil {
		t.Errorf("creator mutate: %v", err)
	}
	if err := g.RequireTaskMutate(ctx, principal("admin"), task); err != nil {
		t.Errorf("admin mutate: %v", err)
	}
	if err := g.RequireTaskMutate(ctx, principal("owner"), task); err != nil {
		t.Errorf("owner mutate: %v", err)
	}

	other := &taskdomain.Task{ID: "task2", CreatorID: "admin", TeamID: "t1"}
	if err := g.RequireTaskMutate(ctx, principal("member"), other); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("member mutating another's task: want ErrUnauthorized, got %v", err)
	}
}
