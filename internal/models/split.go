package models

import "github.com/paywise/paywise/internal/schedule"

// Split represents a shared expense divided among participants.
// The creator paid the full amount; each participant owes a share.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// CreatorID is the user who paid and created the split.
	CreatorID string

	// Description is the human-readable label (e.g. "Ski trip cabin").
	Description string

	// TotalAmount is the full amount paid by the creator.
	TotalAmount float64

	// Currency is the ISO 4217 currency code.
	Currency string

	// NotifyInterval controls when participants are reminded. The
	// notification date is derived from CreatedAt + interval on every
	// scheduler run, never stored.
	NotifyInterval schedule.NotifyInterval

	// CreatedAt is the Unix timestamp when the split was created.
	CreatedAt int64

	// Shares holds the per-participant shares, including the creator's
	// own (already settled) share. Populated on reads.
	Shares []SplitShare
}

// SplitShare is one participant's portion of a split.
//
// The creator's portion is materialized as a share row with IsCreator set
// and Paid true, so the sum of all share rows always equals the split
// total.
type SplitShare struct {
	// ID is the unique identifier for the share (UUID format).
	ID string

	// SplitID references the owning split.
	SplitID string

	// UserID references the participant who owes this share.
	UserID string

	// AmountOwed is this participant's portion of the total.
	AmountOwed float64

	// Paid reports whether the participant has settled up.
	Paid bool

	// IsCreator marks the creator's own materialized share.
	IsCreator bool

	// CreatedAt is the Unix timestamp when the share was created.
	CreatedAt int64
}
