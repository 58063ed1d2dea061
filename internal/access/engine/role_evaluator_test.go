package engine

import (
	"context"
	"testing"

	"taskhub/backend/internal/membership/domain"
)

func TestRoleEvaluator(t *testing.T) {
	tests := []struct {
		name string
		req  AccessRequest
		want bool
	}{
		{"personal creator view", AccessRequest{Action: ActionView, IsCreator: true}, true},
		{"personal creator mutate", AccessRequest{Action: ActionMutate, IsCreator: true}, true},
		{"personal non-creator view", AccessRequest{Action: ActionView}, false},
		{"personal non-creator mutate", AccessRequest{Action: ActionMutate}, false},

		{"team non-member view", AccessRequest{Action: ActionView, HasTeam: true}, false},
		{"team non-member creator mutate", AccessRequest{Action: ActionMutate, HasTeam: true, IsCreator: true}, false},
		{"team member view", AccessRequest{Action: ActionView, HasTeam: true, IsMember: true, Role: domain.RoleMember}, true},
		{"team member mutate own", AccessRequest{Action: ActionMutate, HasTeam: true, IsMember: true, Role: domain.RoleMember, IsCreator: true}, true},
		{"team member mutate other", AccessRequest{Action: ActionMutate, HasTeam: true, IsMember: true, Role: domain.RoleMember}, false},
		{"team admin mutate other", AccessRequest{Action: ActionMutate, HasTeam: true, IsMember: true, Role: domain.RoleAdmin}, true},
		{"team owner mutate other", AccessRequest{Action: ActionMutate, HasTeam: true, IsMember: true, Role: domain.RoleOwner}, true},
	}
	e := NewRoleEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.EvaluateTaskAccess(context.Background(), "t1", tt.req)
			if err != nil {
				t.Fatalf("EvaluateTaskAccess: %v", err)
			}
			if got != tt.want {
				t.Errorf("allowed = %v, want %v", got, tt.want)
			}
		})
	}
}
