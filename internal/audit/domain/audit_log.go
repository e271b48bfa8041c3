// Package domain defines the audit log entry.
package domain

import "time"

// AuditLog is one security event record. Action is a short verb
// (e.g. "login_failure", "refresh_rejected"), Metadata free-form context.
type AuditLog struct {
	ID        string
	Email     string
	Action    string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
