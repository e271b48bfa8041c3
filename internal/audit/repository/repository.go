// Package repository provides persistence for audit logs.
package repository

import (
	"context"

	"todoapp/internal/audit/domain"
)

// Repository is the audit log persistence interface.
type Repository interface {
	// Create persists one audit log entry.
	Create(ctx context.Context, entry *domain.AuditLog) error
}
