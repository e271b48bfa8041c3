// Package repository provides persistence for users.
package repository

import (
	"context"

	"todoapp/internal/user/domain"
)

// Repository is the user persistence interface.
type Repository interface {
	// GetByEmail returns the user for email, or nil if not found.
	// It returns an error only for database failures, not for missing rows.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists the user. The user must have ID set.
	Create(ctx context.Context, u *domain.User) error
}
