package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskhub/backend/internal/audit"
	memdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/security"
	teamdomain "taskhub/backend/internal/team/domain"
	telemetryotel "taskhub/backend/internal/telemetry/otel"
	userdomain "taskhub/backend/internal/user/domain"
)

// Sentinel errors for the team service; the HTTP layer maps them to status codes.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrMemberNotFound = errors.New("user is not a member of this team")
	ErrAlreadyMember  = errors.New("user is already a member of this team")
	ErrInvalidRole    = errors.New("invalid role")

	ErrOnlyOwnerEditsTeam = fmt.Errorf("%w: only the owner can edit or delete the team", rbac.ErrUnauthorized)
	ErrCannotRemoveOwner  = fmt.Errorf("%w: the owner cannot be removed from the team", rbac.ErrUnauthorized)
)

// TeamRepo is the minimal team repository needed by the team service.
type TeamRepo interface {
	GetByID(ctx context.Context, id string) (*teamdomain.Team, error)
	GetByIDs(ctx context.Context, ids []string) ([]*teamdomain.Team, error)
	Create(ctx context.Context, t *teamdomain.Team) error
	Update(ctx context.Context, t *teamdomain.Team) error
	Delete(ctx context.Context, id string) error
}

// MembershipRepo is the minimal membership repository needed by the team service.
type MembershipRepo interface {
	GetByTeamAndUser(ctx context.Context, teamID, userID string) (*memdomain.Membership, error)
	ListByTeam(ctx context.Context, teamID string) ([]*memdomain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*memdomain.Membership, error)
	Create(ctx context.Context, m *memdomain.Membership) error
	UpdateRole(ctx context.Context, teamID, userID string, role memdomain.Role) error
	Delete(ctx context.Context, teamID, userID string) error
	DeleteAllForTeam(ctx context.Context, teamID string) error
}

// UserRepo is the minimal user repository needed by the team service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
}

// TeamService implements team CRUD and membership management. Every operation
// takes the acting Principal explicitly.
type TeamService struct {
	teamRepo       TeamRepo
	membershipRepo MembershipRepo
	userRepo       UserRepo
	guard          *rbac.Guard
	auditor        audit.AuditLogger
	metrics        *telemetryotel.Metrics
}

// NewTeamService returns a TeamService. auditor and metrics may be nil.
func NewTeamService(
	teamRepo TeamRepo,
	membershipRepo MembershipRepo,
	userRepo UserRepo,
	guard *rbac.Guard,
	auditor audit.AuditLogger,
	metrics *telemetryotel.Metrics,
) *TeamService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &TeamService{
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		guard:          guard,
		auditor:        auditor,
		metrics:        metrics,
	}
}

// CreateTeam creates a team with the caller as its sole OWNER.
func (s *TeamService) CreateTeam(ctx context.Context, p security.Principal, name string) (*teamdomain.Team, error) {
	now := time.Now().UTC()
	team := &teamdomain.Team{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := team.Validate(); err != nil {
		return nil, err
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	owner := &memdomain.Membership{
		ID:        uuid.New().String(),
		TeamID:    team.ID,
		UserID:    p.UserID,
		Role:      memdomain.RoleOwner,
		CreatedAt: now,
	}
	if err := s.membershipRepo.Create(ctx, owner); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, p.UserID, "team_created", "team", team.ID)
	return team, nil
}

// GetTeam returns the team; the caller must be a member.
func (s *TeamService) GetTeam(ctx context.Context, p security.Principal, teamID string) (*teamdomain.Team, error) {
	team, err := s.guard.RequireTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMembership(ctx, teamID, p); err != nil {
		s.metrics.RecordPolicyDenial(ctx, "team")
		return nil, err
	}
	return team, nil
}

// ListTeamsForUser returns the teams the caller belongs to.
func (s *TeamService) ListTeamsForUser(ctx context.Context, p security.Principal) ([]*teamdomain.Team, error) {
	memberships, err := s.membershipRepo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	ids := make([]string, len(memberships))
	for i, m := range memberships {
		ids[i] = m.TeamID
	}
	return s.teamRepo.GetByIDs(ctx, ids)
}

// UpdateTeam renames the team. Owner only.
func (s *TeamService) UpdateTeam(ctx context.Context, p security.Principal, teamID, name string) (*teamdomain.Team, error) {
	team, err := s.requireOwner(ctx, p, teamID)
	if err != nil {
		return nil, err
	}
	team.Name = name
	team.UpdatedAt = time.Now().UTC()
	if err := team.Validate(); err != nil {
		return nil, err
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, p.UserID, "team_updated", "team", team.ID)
	return team, nil
}

// DeleteTeam deletes the team and its memberships. Owner only. Tasks owned by
// the team are removed by the database cascade.
func (s *TeamService) DeleteTeam(ctx context.Context, p security.Principal, teamID string) error {
	if _, err := s.requireOwner(ctx, p, teamID); err != nil {
		return err
	}
	if err := s.membershipRepo.DeleteAllForTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, p.UserID, "team_deleted", "team", teamID)
	return nil
}

// AddUserToTeam adds the user with the given username to the team. The caller
// must hold a manage-members role; only an OWNER may grant the OWNER role.
func (s *TeamService) AddUserToTeam(ctx context.Context, p security.Principal, teamID, username string, role memdomain.Role) (*memdomain.Membership, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.guard.RequireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	actor, err := s.guard.RequireMembership(ctx, teamID, p)
	if err != nil {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return nil, err
	}
	if !actor.Role.CanManageMembers() {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return nil, rbac.ErrCannotManageMembers
	}
	if role.IsOwner() && !actor.Role.IsOwner() {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return nil, rbac.ErrOnlyOwnerAssignsOwner
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	isMember, err := s.guard.IsMember(ctx, teamID, user.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}
	m := &memdomain.Membership{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		UserID:    user.ID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, p.UserID, "member_added", "membership", fmt.Sprintf("team=%s user=%s role=%s", teamID, user.ID, role))
	return m, nil
}

// UpdateUserRole changes the target user's role in the team, subject to the
// role-change rules. In particular the owner can never demote themselves,
// which keeps the team at exactly one owner.
func (s *TeamService) UpdateUserRole(ctx context.Context, p security.Principal, teamID, targetUserID string, newRole memdomain.Role) (*memdomain.Membership, error) {
	if !newRole.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.guard.RequireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	actor, err := s.guard.RequireMembership(ctx, teamID, p)
	if err != nil {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return nil, err
	}
	if !actor.Role.CanManageMembers() {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return nil, rbac.ErrCannotManageMembers
	}
	target, err := s.membershipRepo.GetByTeamAndUser(ctx, teamID, targetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrMemberNotFound
	}
	if err := rbac.ValidateRoleChange(actor.UserID, actor.Role, target.UserID, target.Role, newRole); err != nil {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return nil, err
	}
	if err := s.membershipRepo.UpdateRole(ctx, teamID, targetUserID, newRole); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, p.UserID, "role_changed", "membership", fmt.Sprintf("team=%s user=%s role=%s->%s", teamID, targetUserID, target.Role, newRole))
	target.Role = newRole
	return target, nil
}

// RemoveUserFromTeam removes the target user's membership. The caller must
// hold a manage-members role; the OWNER cannot be removed.
func (s *TeamService) RemoveUserFromTeam(ctx context.Context, p security.Principal, teamID, targetUserID string) error {
	if _, err := s.guard.RequireTeam(ctx, teamID); err != nil {
		return err
	}
	actor, err := s.guard.RequireMembership(ctx, teamID, p)
	if err != nil {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return err
	}
	if !actor.Role.CanManageMembers() {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return rbac.ErrCannotManageMembers
	}
	target, err := s.membershipRepo.GetByTeamAndUser(ctx, teamID, targetUserID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrMemberNotFound
	}
	if target.Role.IsOwner() {
		s.metrics.RecordPolicyDenial(ctx, "membership")
		return ErrCannotRemoveOwner
	}
	if err := s.membershipRepo.Delete(ctx, teamID, targetUserID); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, p.UserID, "member_removed", "membership", fmt.Sprintf("team=%s user=%s", teamID, targetUserID))
	return nil
}

// ListMembers returns the team's memberships; the caller must be a member.
func (s *TeamService) ListMembers(ctx context.Context, p security.Principal, teamID string) ([]*memdomain.Membership, error) {
	if _, err := s.guard.RequireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMembership(ctx, teamID, p); err != nil {
		s.metrics.RecordPolicyDenial(ctx, "team")
		return nil, err
	}
	return s.membershipRepo.ListByTeam(ctx, teamID)
}

func (s *TeamService) requireOwner(ctx context.Context, p security.Principal, teamID string) (*teamdomain.Team, error) {
	team, err := s.guard.RequireTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	m, err := s.guard.RequireMembership(ctx, teamID, p)
	if err != nil {
		s.metrics.RecordPolicyDenial(ctx, "team")
		return nil, err
	}
	if !m.Role.IsOwner() {
		s.metrics.RecordPolicyDenial(ctx, "team")
		return nil, ErrOnlyOwnerEditsTeam
	}
	return team, nil
}
