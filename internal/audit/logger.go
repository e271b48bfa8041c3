// Package audit records security events (login failures, token replay, logout-all)
// for after-the-fact review. Writes are best-effort and never fail the caller.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"todoapp/internal/audit/domain"
	auditrepo "todoapp/internal/audit/repository"
)

// Auth event actions.
const (
	ActionRegister        = "register"
	ActionLoginSuccess    = "login_success"
	ActionLoginFailure    = "login_failure"
	ActionRefreshRotated  = "refresh_rotated"
	ActionRefreshRejected = "refresh_rejected"
	ActionLogout          = "logout"
	ActionLogoutAll       = "logout_all"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event. LogEvent is best-effort: failures
// are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, email, action, metadata string)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, email, action, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		Email:     email,
		Action:    action,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s for %s: %v", action, email, err)
	}
}

// Nop is an AuditLogger that discards events. Used in tests and when no DB is configured.
type Nop struct{}

// LogEvent discards the event.
func (Nop) LogEvent(ctx context.Context, email, action, metadata string) {}
