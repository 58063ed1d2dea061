package domain

import (
	"errors"
	"time"
)

// Team is a group of users collaborating on tasks.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the team for persistence.
func (t *Team) Validate() error {
	if t.Name == "" {
		return errors.New("team name is required")
	}
	return nil
}
