// Package repository provides persistence for todos.
package repository

import (
	"context"

	"todoapp/internal/todo/domain"
)

// Repository is the todo persistence interface. All reads and writes are scoped
// to the owning principal's email; a todo is never visible to another user.
type Repository interface {
	// ListByUser returns all todos owned by email, newest first.
	ListByUser(ctx context.Context, email string) ([]*domain.Todo, error)
	// GetByID returns the todo for id if owned by email, or nil if not found.
	GetByID(ctx context.Context, email, id string) (*domain.Todo, error)
	// Create persists the todo. The todo must have ID and UserEmail set.
	Create(ctx context.Context, t *domain.Todo) error
	// Update replaces the mutable fields of the todo owned by email.
	Update(ctx context.Context, t *domain.Todo) error
	// Delete removes the todo for id if owned by email. Absent ids are not an error.
	Delete(ctx context.Context, email, id string) error
}
