package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"taskhub/backend/internal/policy/repository"
)

const policyQuery = "data.taskhub.task_access.allow"

// Default Rego policy that matches the built-in role rules (backward compatibility).
const defaultRegoPolicy = `package taskhub.task_access

default allow = false

allow if {
	not input.task.has_team
	input.task.is_creator
}

allow if {
	input.task.has_team
	input.member.is_member
	input.action == "view"
}

allow if {
	input.task.has_team
	input.member.is_member
	input.action == "mutate"
	input.member.can_manage
}

allow if {
	input.task.has_team
	input.member.is_member
	input.action == "mutate"
	input.task.is_creator
}
`

// OPAEvaluator evaluates task access using OPA Rego. Teams without policies
// get the default module, which reproduces RoleEvaluator's decisions.
type OPAEvaluator struct {
	policyRepo repository.Repository
	fallback   RoleEvaluator
}

// NewOPAEvaluator returns an OPA-based task access evaluator.
func NewOPAEvaluator(policyRepo repository.Repository) *OPAEvaluator {
	return &OPAEvaluator{policyRepo: policyRepo}
}

// HealthCheck verifies that the in-process Rego engine can compile and evaluate
// the default policy. Does not call the policy repo or database. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	modules := map[string]string{"policy_0.rego": defaultRegoPolicy}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return fmt.Errorf("compile default policy: %w", err)
	}
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
		rego.Input(buildInput(AccessRequest{})),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// EvaluateTaskAccess evaluates the request against the team's enabled Rego
// policies, or the default module when the team has none. A policy load or
// evaluation failure is logged and the built-in role rules decide instead.
func (e *OPAEvaluator) EvaluateTaskAccess(ctx context.Context, teamID string, req AccessRequest) (bool, error) {
	var policies []string
	if teamID != "" && e.policyRepo != nil {
		enabled, err := e.policyRepo.GetEnabledByTeam(ctx, teamID)
		if err != nil {
			log.Printf("policy: failed to load policies for team %s: %v", teamID, err)
		} else {
			for _, p := range enabled {
				if p.Enabled && p.Rules != "" {
					policies = append(policies, p.Rules)
				}
			}
		}
	}
	if len(policies) == 0 {
		policies = []string{defaultRegoPolicy}
	}

	allowed, err := e.evaluatePolicies(ctx, policies, buildInput(req))
	if err != nil {
		log.Printf("policy: evaluation failed: %v, using built-in rules", err)
		return e.fallback.EvaluateTaskAccess(ctx, teamID, req)
	}
	return allowed, nil
}

func (e *OPAEvaluator) evaluatePolicies(ctx context.Context, policies []string, input map[string]interface{}) (bool, error) {
	modules := make(map[string]string, len(policies))
	for i, p := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = p
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return false, fmt.Errorf("compile: %w", err)
	}
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("query returned non-boolean %T", rs[0].Expressions[0].Value)
	}
	return allowed, nil
}

func buildInput(req AccessRequest) map[string]interface{} {
	return map[string]interface{}{
		"action": string(req.Action),
		"task": map[string]interface{}{
			"has_team":   req.HasTeam,
			"is_creator": req.IsCreator,
		},
		"member": map[string]interface{}{
			"is_member":  req.IsMember,
			"role":       string(req.Role),
			"can_manage": req.Role.CanManageMembers(),
		},
	}
}
