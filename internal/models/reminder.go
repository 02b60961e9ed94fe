package models

// ReminderKind distinguishes the obligation type a reminder belongs to.
type ReminderKind string

const (
	ReminderRecurring ReminderKind = "recurring"
	ReminderSplit     ReminderKind = "split"
)

// ReminderLogEntry records one delivered reminder. The unique
// (kind, obligation, user, due date) tuple is the idempotency key that
// guarantees at-most-once delivery per period, even when the scheduler
// runs more than once a day.
type ReminderLogEntry struct {
	// Kind is the obligation type (recurring bill or split).
	Kind ReminderKind

	// ObligationID references the recurring bill or split.
	ObligationID string

	// UserID is the recipient of the reminder.
	UserID string

	// DueDate is the due date the reminder was for, formatted YYYY-MM-DD.
	DueDate string

	// SentAt is the Unix timestamp when the reminder was delivered.
	SentAt int64
}
