// Package domain defines the todo item entity.
package domain

import "time"

// Todo is one todo item, owned by the principal identified by UserEmail.
// Date is a calendar date (YYYY-MM-DD); Time and ReminderTime are optional
// clock times (HH:MM).
type Todo struct {
	ID           string
	UserEmail    string
	Title        string
	Completed    bool
	Date         string
	Time         *string
	Reminder     bool
	ReminderTime *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
