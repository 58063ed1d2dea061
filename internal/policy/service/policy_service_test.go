package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/backend/internal/access/engine"
	memdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/platform/rbac"
	policydomain "taskhub/backend/internal/policy/domain"
	"taskhub/backend/internal/security"
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

type memPolicies struct {
	policies map[string]*policydomain.AccessPolicy
}

func newMemPolicies() *memPolicies {
	return &memPolicies{policies: make(map[string]*policydomain.AccessPolicy)}
}

func (m *memPolicies) GetByID(_ context.Context, id string) (*policydomain.AccessPolicy, error) {
	return m.policies[id], nil
}

func (m *memPolicies) GetEnabledByTeam(_ context.Context, teamID string) ([]*policydomain.AccessPolicy, error) {
	var out []*policydomain.AccessPolicy
	for _, p := range m.policies {
		if p.TeamID == teamID && p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPolicies) Create(_ context.Context, p *policydomain.AccessPolicy) error {
	m.policies[p.ID] = p
	return nil
}

func (m *memPolicies) Delete(_ context.Context, id string) error {
	delete(m.policies, id)
	return nil
}

const memberAllowPolicy = `package taskhub.task_access

default allow = false

allow if {
	input.member.is_member
}
`

func newTestService(t *testing.T) (*PolicyService, *memPolicies) {
	t.Helper()
	teams := &memTeams{teams: map[string]*teamdomain.Team{
		"t1": {ID: "t1", Name: "alpha", CreatedAt: time.Now().UTC()},
	}}
	memberships := &memMemberships{roles: map[string]memdomain.Role{
		"t1/owner1":  memdomain.RoleOwner,
		"t1/admin1":  memdomain.RoleAdmin,
		"t1/member1": memdomain.RoleMember,
	}}
	policies := newMemPolicies()
	guard := rbac.NewGuard(teams, memberships, engine.NewRoleEvaluator())
	return NewPolicyService(guard, policies, nil), policies
}

func principal(userID string) security.Principal {
	return security.Principal{UserID: userID}
}

func TestPolicyService_CreateListDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := principal("owner1")

	created, err := svc.CreatePolicy(ctx, owner, "t1", "member-allow", memberAllowPolicy)
	if err != nil {
		t.Fatalf("CreatePolicy: %v", err)
	}
	if created.ID == "" || !created.Enabled || created.TeamID != "t1" {
		t.Errorf("created policy = %+v", created)
	}

	listed, err := svc.ListPolicies(ctx, owner, "t1")
	if err != nil {
		t.Fatalf("ListPolicies: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("ListPolicies = %+v, want the created policy", listed)
	}

	if err := svc.DeletePolicy(ctx, owner, "t1", created.ID); err != nil {
		t.Fatalf("DeletePolicy: %v", err)
	}
	listed, err = svc.ListPolicies(ctx, owner, "t1")
	if err != nil {
		t.Fatalf("ListPolicies after delete: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("ListPolicies after delete = %+v, want empty", listed)
	}
}

func TestPolicyService_OwnerOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, userID := range []string{"admin1", "member1", "outsider"} {
		if _, err := svc.CreatePolicy(ctx, principal(userID), "t1", "p", memberAllowPolicy); !errors.Is(err, rbac.ErrUnauthorized) {
			t.Errorf("CreatePolicy as %s = %v, want unauthorized", userID, err)
		}
		if _, err := svc.ListPolicies(ctx, principal(userID), "t1"); !errors.Is(err, rbac.ErrUnauthorized) {
			t.Errorf("ListPolicies as %s = %v, want unauthorized", userID, err)
		}
	}
}

func TestPolicyService_UnknownTeam(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CreatePolicy(context.Background(), principal("owner1"), "nope", "p", memberAllowPolicy); !errors.Is(err, rbac.ErrTeamNotFound) {
		t.Errorf("CreatePolicy for unknown team = %v, want ErrTeamNotFound", err)
	}
}

func TestPolicyService_RejectsBadRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := principal("owner1")

	tests := []struct {
		name  string
		rules string
	}{
		{"empty", ""},
		{"not rego", "this is not rego {"},
		{"wrong package", "package something.else\n\ndefault allow = false\n"},
	}
	for _, tt := range tests {
		if _, err := svc.CreatePolicy(ctx, owner, "t1", "p", tt.rules); !errors.Is(err, ErrInvalidPolicy) {
			t.Errorf("%s: CreatePolicy = %v, want ErrInvalidPolicy", tt.name, err)
		}
	}
	if _, err := svc.CreatePolicy(ctx, owner, "t1", "", memberAllowPolicy); !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("missing name: CreatePolicy = %v, want ErrInvalidPolicy", err)
	}
}

func TestPolicyService_DeleteScopedToTeam(t *testing.T) {
	svc, policies := newTestService(t)
	ctx := context.Background()
	owner := principal("owner1")

	if err := svc.DeletePolicy(ctx, owner, "t1", "missing"); !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("DeletePolicy missing = %v, want ErrPolicyNotFound", err)
	}

	// A policy of another team is invisible through t1.
	policies.policies["other"] = &policydomain.AccessPolicy{
		ID: "other", TeamID: "t2", Name: "p", Rules: memberAllowPolicy, Enabled: true,
	}
	if err := svc.DeletePolicy(ctx, owner, "t1", "other"); !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("DeletePolicy cross-team = %v, want ErrPolicyNotFound", err)
	}
}
