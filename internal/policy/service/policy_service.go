// Package service manages per-team access policies: owner-guarded create,
// list, and delete of the Rego modules the task access engine evaluates.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/open-policy-agent/opa/v1/ast"

	"taskhub/backend/internal/audit"
	"taskhub/backend/internal/platform/rbac"
	policydomain "taskhub/backend/internal/policy/domain"
	policyrepo "taskhub/backend/internal/policy/repository"
	"taskhub/backend/internal/security"
)

// Sentinel errors for the policy service; the HTTP layer maps them to status codes.
var (
	ErrPolicyNotFound = errors.New("policy not found")
	ErrInvalidPolicy  = errors.New("invalid policy")

	ErrOnlyOwnerManagesPolicies = fmt.Errorf("%w: only the team owner can manage access policies", rbac.ErrUnauthorized)
)

// policyPackage is the package path the access engine queries; every stored
// module must declare it or its rules would never be consulted.
const policyPackage = "data.taskhub.task_access"

// PolicyService implements team access policy management. All operations are
// restricted to the team's OWNER.
type PolicyService struct {
	guard    *rbac.Guard
	policies policyrepo.Repository
	auditor  audit.AuditLogger
}

// NewPolicyService returns a PolicyService. auditor may be nil.
func NewPolicyService(guard *rbac.Guard, policies policyrepo.Repository, auditor audit.AuditLogger) *PolicyService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &PolicyService{guard: guard, policies: policies, auditor: auditor}
}

// CreatePolicy stores a new enabled Rego policy for the team. The module must
// parse and must declare the task access package, otherwise the engine could
// never reach its rules.
func (s *PolicyService) CreatePolicy(ctx context.Context, p security.Principal, teamID, name, rules string) (*policydomain.AccessPolicy, error) {
	if err := s.requireOwner(ctx, p, teamID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	}
	if err := validateRules(rules); err != nil {
		return nil, err
	}
	policy := &policydomain.AccessPolicy{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		Name:      name,
		Rules:     rules,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, p.UserID, "policy_created", "policy", fmt.Sprintf("team=%s policy=%s", teamID, policy.ID))
	return policy, nil
}

// ListPolicies returns the team's enabled policies. Owner only.
func (s *PolicyService) ListPolicies(ctx context.Context, p security.Principal, teamID string) ([]*policydomain.AccessPolicy, error) {
	if err := s.requireOwner(ctx, p, teamID); err != nil {
		return nil, err
	}
	return s.policies.GetEnabledByTeam(ctx, teamID)
}

// DeletePolicy removes one of the team's policies. Owner only; a policy id
// belonging to another team reads as not found.
func (s *PolicyService) DeletePolicy(ctx context.Context, p security.Principal, teamID, policyID string) error {
	if err := s.requireOwner(ctx, p, teamID); err != nil {
		return err
	}
	policy, err := s.policies.GetByID(ctx, policyID)
	if err != nil {
		return err
	}
	if policy == nil || policy.TeamID != teamID {
		return ErrPolicyNotFound
	}
	if err := s.policies.Delete(ctx, policyID); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, p.UserID, "policy_deleted", "policy", fmt.Sprintf("team=%s policy=%s", teamID, policyID))
	return nil
}

func (s *PolicyService) requireOwner(ctx context.Context, p security.Principal, teamID string) error {
	if _, err := s.guard.RequireTeam(ctx, teamID); err != nil {
		return err
	}
	m, err := s.guard.RequireMembership(ctx, teamID, p)
	if err != nil {
		return err
	}
	if !m.Role.IsOwner() {
		return ErrOnlyOwnerManagesPolicies
	}
	return nil
}

func validateRules(rules string) error {
	if rules == "" {
		return fmt.Errorf("%w: rules are required", ErrInvalidPolicy)
	}
	module, err := ast.ParseModule("policy.rego", rules)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if module.Package.Path.String() != policyPackage {
		return fmt.Errorf("%w: module must declare package taskhub.task_access", ErrInvalidPolicy)
	}
	return nil
}
