package domain

import (
	"errors"
	"time"
)

// ErrInvalidStatus is returned for a status outside TODO/IN_PROGRESS/DONE.
var ErrInvalidStatus = errors.New("invalid task status")

// Status is a task's workflow state.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// Task is a unit of work. TeamID is empty for personal tasks, which only the
// creator may see or mutate; team tasks are visible to all members of the team.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	CreatorID   string
	TeamID      string // empty for a personal task
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the task for persistence.
func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("task title is required")
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.CreatorID == "" {
		return errors.New("task creator is required")
	}
	return nil
}
