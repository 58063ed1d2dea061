package domain

import (
	"errors"
	"time"
)

// User is the core user entity. Verified gates login: an account must confirm
// its email before it can authenticate.
type User struct {
	ID           string
	Username     string
	Email        string
	Title        string
	FirstName    string
	LastName     string
	PasswordHash string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
