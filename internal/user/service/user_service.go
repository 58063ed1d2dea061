// Package service implements account self-management: profile reads,
// profile updates with password rotation, and account deletion.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskhub/backend/internal/audit"
	memdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/security"
	teamdomain "taskhub/backend/internal/team/domain"
	userdomain "taskhub/backend/internal/user/domain"
)

// Sentinel errors for the user service; the HTTP layer maps them to status codes.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrEmailTaken    = errors.New("email is already registered")
	ErrInvalidInput  = errors.New("invalid input")

	ErrNotAccountOwner  = fmt.Errorf("%w: you can only manage your own account", rbac.ErrUnauthorized)
	ErrPasswordMismatch = fmt.Errorf("%w: current password does not match", rbac.ErrUnauthorized)
)

const minPasswordLength = 8

// UserRepo is the minimal user repository needed by the user service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Update(ctx context.Context, u *userdomain.User) error
	Delete(ctx context.Context, id string) error
}

// MembershipRepo is the minimal membership repository needed by the user service.
type MembershipRepo interface {
	ListByUser(ctx context.Context, userID string) ([]*memdomain.Membership, error)
}

// TeamRepo is the minimal team repository needed by the user service.
type TeamRepo interface {
	GetByIDs(ctx context.Context, ids []string) ([]*teamdomain.Team, error)
}

// Hasher verifies and produces password hashes.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// UpdateInput carries a partial profile update. Nil pointer fields are left
// unchanged. A password change requires both CurrentPassword and NewPassword.
type UpdateInput struct {
	Title           *string
	FirstName       *string
	LastName        *string
	Username        *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

// UserService implements account operations. Mutations are restricted to the
// acting Principal's own account.
type UserService struct {
	users       UserRepo
	memberships MembershipRepo
	teams       TeamRepo
	hasher      Hasher
	auditor     audit.AuditLogger
}

// NewUserService returns a UserService. auditor may be nil.
func NewUserService(users UserRepo, memberships MembershipRepo, teams TeamRepo, hasher Hasher, auditor audit.AuditLogger) *UserService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &UserService{
		users:       users,
		memberships: memberships,
		teams:       teams,
		hasher:      hasher,
		auditor:     auditor,
	}
}

// Profile returns the caller's own user record.
func (s *UserService) Profile(ctx context.Context, p security.Principal) (*userdomain.User, error) {
	return s.requireUser(ctx, p.UserID)
}

// GetByID returns the user for id, or ErrUserNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return s.requireUser(ctx, id)
}

// GetByUsername returns the user with the given username, or ErrUserNotFound.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByEmail returns the user with the given email, or ErrUserNotFound.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's own account.
// Username and email changes are rejected when already taken by another
// account. Changing the password needs the current one, and the new
// password must actually be new.
func (s *UserService) UpdateProfile(ctx context.Context, p security.Principal, targetID string, in UpdateInput) (*userdomain.User, error) {
	if targetID != p.UserID {
		return nil, ErrNotAccountOwner
	}
	user, err := s.requireUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		user.Title = *in.Title
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Username != nil {
		if err := s.applyUsername(ctx, user, *in.Username); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		if err := s.applyEmail(ctx, user, *in.Email); err != nil {
			return nil, err
		}
	}
	if err := s.applyPassword(in.CurrentPassword, in.NewPassword, user); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, p.UserID, "profile_updated", "user", "")
	return user, nil
}

// DeleteAccount removes the caller's own account. Dependent rows (sessions,
// memberships, personal tasks) are removed by the database cascade.
func (s *UserService) DeleteAccount(ctx context.Context, p security.Principal, targetID string) error {
	if targetID != p.UserID {
		return ErrNotAccountOwner
	}
	if _, err := s.requireUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, p.UserID, "account_deleted", "user", "")
	return nil
}

// ListTeams returns the teams the given user belongs to.
func (s *UserService) ListTeams(ctx context.Context, userID string) ([]*teamdomain.Team, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	memberships, err := s.memberships.ListByUser(ctx, userID)
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
	return s.teams.GetByIDs(ctx, ids)
}

func (s *UserService) requireUser(ctx context.Context, id string) (*userdomain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) applyUsername(ctx context.Context, user *userdomain.User, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username cannot be empty", ErrInvalidInput)
	}
	if username == user.Username {
		return nil
	}
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != user.ID {
		return ErrUsernameTaken
	}
	user.Username = username
	return nil
}

func (s *UserService) applyEmail(ctx context.Context, user *userdomain.User, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}
	if email == user.Email {
		return nil
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != user.ID {
		return ErrEmailTaken
	}
	user.Email = email
	return nil
}

func (s *UserService) applyPassword(current, next string, user *userdomain.User) error {
	if current == "" && next == "" {
		return nil
	}
	if current == "" || next == "" {
		return fmt.Errorf("%w: changing the password requires both the current and the new password", ErrInvalidInput)
	}
	if err := s.hasher.Compare(user.PasswordHash, current); err != nil {
		return ErrPasswordMismatch
	}
	if s.hasher.Compare(user.PasswordHash, next) == nil {
		return fmt.Errorf("%w: new password must differ from the current password", ErrInvalidInput)
	}
	if len(next) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}
