package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"taskhub/backend/internal/access/engine"
	memdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/security"
	taskdomain "taskhub/backend/internal/task/domain"
	teamdomain "taskhub/backend/internal/team/domain"
)

type memTaskRepo struct {
	mu   sync.Mutex
	byID map[string]*taskdomain.Task
}

func (r *memTaskRepo) GetByID(ctx context.Context, id string) (*taskdomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byID[id]; ok {
		t2 := *t
		return &t2, nil
	}
	return nil, nil
}

func (r *memTaskRepo) ListByCreator(ctx context.Context, creatorID string) ([]*taskdomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*taskdomain.Task
	for _, t := range r.byID {
		if t.CreatorID == creatorID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListByTeam(ctx context.Context, teamID string) ([]*taskdomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*taskdomain.Task
	for _, t := range r.byID {
		if t.TeamID == teamID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) SearchByTitle(ctx context.Context, creatorID, keyword string) ([]*taskdomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*taskdomain.Task
	for _, t := range r.byID {
		if t.CreatorID == creatorID && containsFold(t.Title, keyword) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListByCreatorAndStatus(ctx context.Context, creatorID string, status taskdomain.Status) ([]*taskdomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*taskdomain.Task
	for _, t := range r.byID {
		if t.CreatorID == creatorID && t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Create(ctx context.Context, t *taskdomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t2 := *t
	r.byID[t.ID] = &t2
	return nil
}

func (r *memTaskRepo) Update(ctx context.Context, t *taskdomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t2 := *t
	r.byID[t.ID] = &t2
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type memTeamGetter struct {
	byID map[string]*teamdomain.Team
}

func (g *memTeamGetter) GetByID(ctx context.Context, id string) (*teamdomain.Team, error) {
	return g.byID[id], nil
}

type memMembershipGetter struct {
	m []*memdomain.Membership
}

func (g *memMembershipGetter) GetByTeamAndUser(ctx context.Context, teamID, userID string) (*memdomain.Membership, error) {
	for _, m := range g.m {
		if m.TeamID == teamID && m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

type taskFixture struct {
	tasks       *memTaskRepo
	teams       *memTeamGetter
	memberships *memMembershipGetter
}

// newTestTaskService builds a service over one team ("t1") with an owner,
// an admin, and two members.
func newTestTaskService(t *testing.T) (*TaskService, *taskFixture) {
	t.Helper()
	f := &taskFixture{
		tasks: &memTaskRepo{byID: make(map[string]*taskdomain.Task)},
		teams: &memTeamGetter{byID: map[string]*teamdomain.Team{
			"t1": {ID: "t1", Name: "platform", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		}},
		memberships: &memMembershipGetter{m: []*memdomain.Membership{
			{ID: "m1", TeamID: "t1", UserID: "owner", Role: memdomain.RoleOwner},
			{ID: "m2", TeamID: "t1", UserID: "admin", Role: memdomain.RoleAdmin},
			{ID: "m3", TeamID: "t1", UserID: "member", Role: memdomain.RoleMember},
			{ID: "m4", TeamID: "t1", UserID: "member2", Role: memdomain.RoleMember},
		}},
	}
	guard := rbac.NewGuard(f.teams, f.memberships, engine.NewRoleEvaluator())
	svc := NewTaskService(f.tasks, guard, nil, nil, nil)
	return svc, f
}

func principal(id string) security.Principal {
	return security.Principal{UserID: id}
}

func TestTaskService_CreatePersonal(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, principal("member"), CreateInput{Title: "write report"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != taskdomain.StatusTodo {
		t.Errorf("default status: got %s, want TODO", task.Status)
	}
	if task.TeamID != "" || task.CreatorID != "member" {
		t.Errorf("task ownership: team=%q creator=%q", task.TeamID, task.CreatorID)
	}

	if _, err := svc.Create(ctx, principal("member"), CreateInput{}); err == nil {
		t.Error("empty title should fail")
	}
}

func TestTaskService_CreateTeamTask(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, principal("member"), CreateInput{Title: "deploy", TeamID: "t1"}); err != nil {
		t.Fatalf("member Create: %v", err)
	}
	if _, err := svc.Create(ctx, principal("outsider"), CreateInput{Title: "deploy", TeamID: "t1"}); !errors.Is(err, rbac.ErrUnauthorized) {
		t.Errorf("outsider Create: want ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Create(ctx, principal("member"), CreateInput{Title: "deploy", TeamID: "no-such"}); !errors.Is(err, rbac.ErrTeamNotFound) {
		t.Errorf("unknown team: want ErrTeamNotFound, got %v", err)
	}
}

func TestTaskService_PersonalTaskVisibility(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()
	task, err := svc.Create(ctx, principal("member"), CreateInput{Title: "private"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, principal("member"), task.ID); err != nil {
		t.Errorf("creator Get: %v", err)
	}
	if _, err := svc.Get(ctx, principal("member2"), task.ID); !errors.Is(err, rbac.ErrUnauthorized) {
		t.Errorf("other user Get: want ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Get(ctx, principal("member"), "no-such"); !errors.Is(err, rbac.ErrTaskNotFound) {
		t.Errorf("unknown task: want ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_TeamTaskMutation(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()
	task, err := svc.Create(ctx, principal("member"), CreateInput{Title: "deploy", TeamID: "t1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	upd := UpdateInput{Title: "deploy v2", Status: taskdomain.StatusInProgress}

	// Any member can view.
	if _, err := svc.Get(ctx, principal("member2"), task.ID); err != nil {
		t.Errorf("other member Get: %v", err)
	}
	// A MEMBER who is not the creator cannot mutate.
	if _, err := svc.Update(ctx, principal("member2"), task.ID, upd); !errors.Is(err, rbac.ErrUnauthorized) {
		t.Errorf("non-creator member Update: want ErrUnauthorized, got %v", err)
	}
	// The creator, ADMIN, and OWNER can all mutate.
	if _, err := svc.Update(ctx, principal("member"), task.ID, upd); err != nil {
		t.Errorf("creator Update: %v", err)
	}
	if _, err := svc.Update(ctx, principal("admin"), task.ID, upd); err != nil {
		t.Errorf("admin Update: %v", err)
	}
	if _, err := svc.Update(ctx, principal("owner"), task.ID, upd); err != nil {
		t.Errorf("owner Update: %v", err)
	}
	// Outsiders cannot even view.
	if _, err := svc.Get(ctx, principal("outsider"), task.ID); !errors.Is(err, rbac.ErrUnauthorized) {
		t.Errorf("outsider Get: want ErrUnauthorized, got %v", err)
	}
}

func TestTaskService_Delete(t *testing.T) {
	svc, f := newTestTaskService(t)
	ctx := context.Background()
	task, err := svc.Create(ctx, principal("member"), CreateInput{Title: "deploy", TeamID: "t1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, principal("member2"), task.ID); !errors.Is(err, rbac.ErrUnauthorized) {
		t.Errorf("non-creator member Delete: want ErrUnauthorized, got %v", err)
	}
	if err := svc.Delete(ctx, principal("admin"), task.ID); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}
	if got, _ := f.tasks.GetByID(ctx, task.ID); got != nil {
		t.Error("task should be gone")
	}
	if err := svc.Delete(ctx, principal("admin"), task.ID); !errors.Is(err, rbac.ErrTaskNotFound) {
		t.Errorf("double delete: want ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_Listings(t *testing.T) {
	svc, _ := newTestTaskService(t)
	ctx := context.Background()
	mustCreate := func(p string, in CreateInput) {
		t.Helper()
		if _, err := svc.Create(ctx, principal(p), in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	mustCreate("member", CreateInput{Title: "write report"})
	mustCreate("member", CreateInput{Title: "Review PR", Status: taskdomain.StatusInProgress})
	mustCreate("member", CreateInput{Title: "deploy", TeamID: "t1"})
	mustCreate("admin", CreateInput{Title: "plan sprint", TeamID: "t1"})

	mine, err := svc.ListMine(ctx, principal("member"))
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("ListMine: got %d, want 3", len(mine))
	}

	teamTasks, err := svc.ListByTeam(ctx, principal("member2"), "t1")
	if err != nil {
		t.Fatalf("ListByTeam: %v", err)
	}
	if len(teamTasks) != 2 {
		t.Errorf("ListByTeam: got %d, want 2", len(teamTasks))
	}
	if _, err := svc.ListByTeam(ctx, principal("outsider"), "t1"); !errors.Is(err, rbac.ErrUnauthorized) {
		t.Errorf("outsider ListByTeam: want ErrUnauthorized, got %v", err)
	}

	hits, err := svc.SearchByTitle(ctx, principal("member"), "review")
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("SearchByTitle: got %d, want 1", len(hits))
	}

	inProgress, err := svc.FilterByStatus(ctx, principal("member"), taskdomain.StatusInProgress)
	if err != nil {
		t.Fatalf("FilterByStatus: %v", err)
	}
	if len(inProgress) != 1 {
		t.Errorf("FilterByStatus: got %d, want 1", len(inProgress))
	}
	if _, err := svc.FilterByStatus(ctx, principal("member"), taskdomain.Status("BOGUS")); !errors.Is(err, taskdomain.ErrInvalidStatus) {
		t.Errorf("bad status: want ErrInvalidStatus, got %v", err)
	}
}
