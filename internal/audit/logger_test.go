package audit

import (
	"context"
	"errors"
	"testing"

	"todoapp/internal/audit/domain"
)

type memAuditRepo struct {
	entries []*domain.AuditLog
	err     error
}

func (r *memAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func TestLogEvent_RecordsEntry(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "203.0.113.9" })

	l.LogEvent(context.Background(), "a@x.com", ActionLoginFailure, "bad password")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Email != "a@x.com" || e.Action != ActionLoginFailure || e.IP != "203.0.113.9" {
		t.Errorf("entry = %+v", e)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Errorf("entry missing ID or CreatedAt: %+v", e)
	}
}

func TestLogEvent_NilExtractorUsesUnknown(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, nil)

	l.LogEvent(context.Background(), "a@x.com", ActionLogout, "")

	if got := repo.entries[0].IP; got != "unknown" {
		t.Errorf("IP = %q, want unknown", got)
	}
}

func TestLogEvent_RepoFailureDoesNotPanic(t *testing.T) {
	l := NewLogger(&memAuditRepo{err: errors.New("db down")}, nil)
	l.LogEvent(context.Background(), "a@x.com", ActionRegister, "")
}

func TestLogEvent_NilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), "a@x.com", ActionLogoutAll, "")
}
