package repository

import (
	"context"
	"database/sql"
	"errors"

	"todoapp/internal/todo/domain"
)

// PostgresRepository implements Repository on Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a todo repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns all todos owned by email, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, email string) ([]*domain.Todo, error) {
	const q = `SELECT id, user_email, title, completed, date, time, reminder, reminder_time, created_at, updated_at
FROM todos WHERE user_email = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Todo
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.UserEmail, &t.Title, &t.Completed, &t.Date, &t.Time, &t.Reminder, &t.ReminderTime, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// GetByID returns the todo for id if owned by email, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, email, id string) (*domain.Todo, error) {
	const q = `SELECT id, user_email, title, completed, date, time, reminder, reminder_time, created_at, updated_at
FROM todos WHERE id = $1 AND user_email = $2`
	var t domain.Todo
	err := r.db.QueryRowContext(ctx, q, id, email).Scan(
		&t.ID, &t.UserEmail, &t.Title, &t.Completed, &t.Date, &t.Time, &t.Reminder, &t.ReminderTime, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Create persists the todo to the database.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Todo) error {
	const q = `INSERT INTO todos (id, user_email, title, completed, date, time, reminder, reminder_time, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.UserEmail, t.Title, t.Completed, t.Date, t.Time, t.Reminder, t.ReminderTime, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Update replaces the mutable fields of the todo owned by email.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Todo) error {
	const q = `UPDATE todos SET title = $1, completed = $2, date = $3, time = $4, reminder = $5, reminder_time = $6, updated_at = $7
WHERE id = $8 AND user_email = $9`
	_, err := r.db.ExecContext(ctx, q,
		t.Title, t.Completed, t.Date, t.Time, t.Reminder, t.ReminderTime, t.UpdatedAt, t.ID, t.UserEmail,
	)
	return err
}

// Delete removes the todo for id if owned by email.
func (r *PostgresRepository) Delete(ctx context.Context, email, id string) error {
	const q = `DELETE FROM todos WHERE id = $1 AND user_email = $2`
	_, err := r.db.ExecContext(ctx, q, id, email)
	return err
}
