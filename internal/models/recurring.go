package models

import "github.com/paywise/paywise/internal/schedule"

// RecurringBill represents a bill that repeats on a fixed frequency.
//
// The frequency and start date are fixed at creation. The next due date is
// never stored; the reminder engine recomputes it from these two fields on
// every run.
type RecurringBill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// UserID is the owner who pays this bill and receives reminders.
	UserID string

	// Description is the human-readable label (e.g. "Netflix").
	Description string

	// Amount is the bill amount per occurrence.
	Amount float64

	// Currency is the ISO 4217 currency code.
	Currency string

	// Category is the user-selected category (e.g. "Subscriptions").
	Category string

	// StartDate is the Unix timestamp of the first payment date,
	// normalized to midnight UTC.
	StartDate int64

	// Frequency is the validated recurrence tag.
	Frequency schedule.Frequency

	// PaymentLink is an optional URL for paying the bill.
	PaymentLink string

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}
