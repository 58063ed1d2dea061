// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	"taskhub/backend/internal/config"
	"taskhub/backend/internal/db"
	memdomain "taskhub/backend/internal/membership/domain"
	membershiprepo "taskhub/backend/internal/membership/repository"
	"taskhub/backend/internal/security"
	taskdomain "taskhub/backend/internal/task/domain"
	taskrepo "taskhub/backend/internal/task/repository"
	teamdomain "taskhub/backend/internal/team/domain"
	teamrepo "taskhub/backend/internal/team/repository"
	userdomain "taskhub/backend/internal/user/domain"
	userrepo "taskhub/backend/internal/user/repository"
)

const (
	devUserEmail   = "dev@example.com"
	devPassword    = "password123"
	devUserID      = "dev-user-001"
	memberUserID   = "dev-user-002"
	memberEmail    = "member@example.com"
	devTeamID      = "dev-team-001"
	devOwnerMemID  = "dev-membership-001"
	devMemberMemID = "dev-membership-002"
	devTaskID      = "dev-task-001"
	devTeamTaskID  = "dev-task-002"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	teams := teamrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	tasks := taskrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed: lookup dev user: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev user already exists, nothing to do")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(devPassword)
	if err != nil {
		log.Fatalf("seed: hash password: %v", err)
	}

	now := time.Now().UTC()
	dev := &userdomain.User{
		ID: devUserID, Username: "dev", Email: devUserEmail,
		FirstName: "Dev", LastName: "User",
		PasswordHash: hash, Verified: true,
		CreatedAt: now, UpdatedAt: now,
	}
	member := &userdomain.User{
		ID: memberUserID, Username: "member", Email: memberEmail,
		FirstName: "Member", LastName: "User",
		PasswordHash: hash, Verified: true,
		CreatedAt: now, UpdatedAt: now,
	}
	for _, u := range []*userdomain.User{dev, member} {
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed: create user %s: %v", u.Username, err)
		}
	}

	team := &teamdomain.Team{ID: devTeamID, Name: "dev team", CreatedAt: now, UpdatedAt: now}
	if err := teams.Create(ctx, team); err != nil {
		log.Fatalf("seed: create team: %v", err)
	}
	for _, m := range []*memdomain.Membership{
		{ID: devOwnerMemID, TeamID: devTeamID, UserID: devUserID, Role: memdomain.RoleOwner, CreatedAt: now},
		{ID: devMemberMemID, TeamID: devTeamID, UserID: memberUserID, Role: memdomain.RoleMember, CreatedAt: now},
	} {
		if err := memberships.Create(ctx, m); err != nil {
			log.Fatalf("seed: create membership: %v", err)
		}
	}

	for _, task := range []*taskdomain.Task{
		{ID: devTaskID, Title: "personal task", Status: taskdomain.StatusTodo, CreatorID: devUserID, CreatedAt: now, UpdatedAt: now},
		{ID: devTeamTaskID, Title: "team task", Status: taskdomain.StatusInProgress, CreatorID: memberUserID, TeamID: devTeamID, CreatedAt: now, UpdatedAt: now},
	} {
		if err := tasks.Create(ctx, task); err != nil {
			log.Fatalf("seed: create task: %v", err)
		}
	}

	log.Printf("seed: created users %s and %s (password %q), team %s with sample tasks", devUserEmail, memberEmail, devPassword, devTeamID)
}
