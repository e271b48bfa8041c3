package repository

import (
	"context"
	"database/sql"

	"todoapp/internal/audit/domain"
)

// PostgresRepository implements Repository on Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists one audit log entry.
func (r *PostgresRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const q = `INSERT INTO audit_logs (id, email, action, ip, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q,
		entry.ID, entry.Email, entry.Action, entry.IP, entry.Metadata, entry.CreatedAt,
	)
	return err
}
