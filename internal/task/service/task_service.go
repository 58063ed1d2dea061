package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskhub/backend/internal/audit"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/security"
	taskdomain "taskhub/backend/internal/task/domain"
	"taskhub/backend/internal/telemetry"
	telemetryotel "taskhub/backend/internal/telemetry/otel"
)

// TaskRepo is the minimal task repository needed by the task service.
type TaskRepo interface {
	GetByID(ctx context.Context, id string) (*taskdomain.Task, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*taskdomain.Task, error)
	ListByTeam(ctx context.Context, teamID string) ([]*taskdomain.Task, error)
	SearchByTitle(ctx context.Context, creatorID, keyword string) ([]*taskdomain.Task, error)
	ListByCreatorAndStatus(ctx context.Context, creatorID string, status taskdomain.Status) ([]*taskdomain.Task, error)
	Create(ctx context.Context, t *taskdomain.Task) error
	Update(ctx context.Context, t *taskdomain.Task) error
	Delete(ctx context.Context, id string) error
}

// TaskService implements task CRUD under the task access rule: a personal
// task belongs to its creator alone; a team task is visible to every member
// and mutable by its creator or by ADMIN/OWNER.
type TaskService struct {
	taskRepo TaskRepo
	guard    *rbac.Guard
	auditor  audit.AuditLogger
	emitter  telemetry.EventEmitter
	metrics  *telemetryotel.Metrics
}

// NewTaskService returns a TaskService. auditor, emitter, and metrics may be nil.
func NewTaskService(
	taskRepo TaskRepo,
	guard *rbac.Guard,
	auditor audit.AuditLogger,
	emitter telemetry.EventEmitter,
	metrics *telemetryotel.Metrics,
) *TaskService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &TaskService{
		taskRepo: taskRepo,
		guard:    guard,
		auditor:  auditor,
		emitter:  emitter,
		metrics:  metrics,
	}
}

// CreateInput carries the task creation fields. TeamID empty means a personal task.
type CreateInput struct {
	Title       string
	Description string
	Status      taskdomain.Status
	TeamID      string
}

// Create creates a task owned by the caller. When TeamID is set the caller
// must be a member of that team.
func (s *TaskService) Create(ctx context.Context, p security.Principal, in CreateInput) (*taskdomain.Task, error) {
	if in.Status == "" {
		in.Status = taskdomain.StatusTodo
	}
	if in.TeamID != "" {
		if _, err := s.guard.RequireTeam(ctx, in.TeamID); err != nil {
			return nil, err
		}
		if _, err := s.guard.RequireMembership(ctx, in.TeamID, p); err != nil {
			s.metrics.RecordPolicyDenial(ctx, "task")
			return nil, err
		}
	}
	now := time.Now().UTC()
	task := &taskdomain.Task{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		CreatorID:   p.UserID,
		TeamID:      in.TeamID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	telemetry.EmitAsync(s.emitter, telemetry.NewEvent(p.UserID, "task_created", "task", map[string]string{"task_id": task.ID}))
	return task, nil
}

// Get returns the task if the caller may view it.
func (s *TaskService) Get(ctx context.Context, p security.Principal, taskID string) (*taskdomain.Task, error) {
	task, err := s.requireTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireTaskView(ctx, p, task); err != nil {
		s.metrics.RecordPolicyDenial(ctx, "task")
		return nil, err
	}
	return task, nil
}

// UpdateInput carries the mutable task fields.
type UpdateInput struct {
	Title       string
	Description string
	Status      taskdomain.Status
}

// Update modifies the task if the caller may mutate it.
func (s *TaskService) Update(ctx context.Context, p security.Principal, taskID string, in UpdateInput) (*taskdomain.Task, error) {
	task, err := s.requireTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireTaskMutate(ctx, p, task); err != nil {
		s.metrics.RecordPolicyDenial(ctx, "task")
		return nil, err
	}
	task.Title = in.Title
	task.Description = in.Description
	task.Status = in.Status
	task.UpdatedAt = time.Now().UTC()
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, p.UserID, "task_updated", "task", task.ID)
	return task, nil
}

// Delete removes the task if the caller may mutate it.
func (s *TaskService) Delete(ctx context.Context, p security.Principal, taskID string) error {
	task, err := s.requireTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireTaskMutate(ctx, p, task); err != nil {
		s.metrics.RecordPolicyDenial(ctx, "task")
		return err
	}
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, p.UserID, "task_deleted", "task", taskID)
	return nil
}

// ListMine returns the caller's own tasks.
func (s *TaskService) ListMine(ctx context.Context, p security.Principal) ([]*taskdomain.Task, error) {
	return s.taskRepo.ListByCreator(ctx, p.UserID)
}

// ListByTeam returns the team's tasks; the caller must be a member.
func (s *TaskService) ListByTeam(ctx context.Context, p security.Principal, teamID string) ([]*taskdomain.Task, error) {
	if _, err := s.guard.RequireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMembership(ctx, teamID, p); err != nil {
		s.metrics.RecordPolicyDenial(ctx, "task")
		return nil, err
	}
	return s.taskRepo.ListByTeam(ctx, teamID)
}

// SearchByTitle returns the caller's tasks whose title contains keyword.
func (s *TaskService) SearchByTitle(ctx context.Context, p security.Principal, keyword string) ([]*taskdomain.Task, error) {
	return s.taskRepo.SearchByTitle(ctx, p.UserID, keyword)
}

// FilterByStatus returns the caller's tasks with the given status.
func (s *TaskService) FilterByStatus(ctx context.Context, p security.Principal, status taskdomain.Status) ([]*taskdomain.Task, error) {
	if !status.Valid() {
		return nil, taskdomain.ErrInvalidStatus
	}
	return s.taskRepo.ListByCreatorAndStatus(ctx, p.UserID, status)
}

func (s *TaskService) requireTask(ctx context.Context, taskID string) (*taskdomain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, rbac.ErrTaskNotFound
	}
	return task, nil
}
