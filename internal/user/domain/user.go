// Package domain defines the user entity (the authenticated principal).
package domain

import (
	"errors"
	"strings"
	"time"
)

// User is a registered account. Email is the stable principal identifier used
// as the JWT subject and the session-store namespace.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks required fields before persistence.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user: id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("user: email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("user: password hash is required")
	}
	return nil
}
