// Package schedule holds the calendar arithmetic shared by recurring-bill
// and split reminders. Everything here is pure: callers inject "today".
package schedule

import (
	"fmt"
	"time"
)

// Frequency is the recurrence tag of a recurring bill.
type Frequency string

const (
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// Frequencies lists all valid recurrence tags.
var Frequencies = []Frequency{Weekly, Biweekly, Monthly, Quarterly, Yearly}

// ParseFrequency validates a frequency tag. Unknown tags are an error,
// not a fallback: invalid schedules must be rejected at creation time.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

// advance moves t forward by one period of f.
func (f Frequency) advance(t time.Time) time.Time {
	switch f {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Biweekly:
		return t.AddDate(0, 0, 14)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Quarterly:
		return t.AddDate(0, 3, 0)
	case Yearly:
		return t.AddDate(1, 0, 0)
	}
	// Unreachable for frequencies built via ParseFrequency.
	panic(fmt.Sprintf("schedule: invalid frequency %q", f))
}

// DateOnly truncates t to midnight UTC. All due-date comparisons are
// date-only.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextOccurrence returns the first occurrence of a recurring obligation
// strictly after today, stepping from start by whole periods of f.
// If start is already after today it is returned unchanged.
func NextOccurrence(start time.Time, f Frequency, today time.Time) time.Time {
	start = DateOnly(start)
	today = DateOnly(today)

	if start.After(today) {
		return start
	}

	next := start
	for !next.After(today) {
		next = f.advance(next)
	}
	return next
}

// NotifyInterval controls when split participants are reminded.
type NotifyInterval string

const (
	NotifyDaily    NotifyInterval = "daily"
	NotifyWeekly   NotifyInterval = "weekly"
	NotifyBiweekly NotifyInterval = "biweekly"
	NotifyMonthly  NotifyInterval = "monthly"
	NotifyNever    NotifyInterval = "never"
)

// ParseNotifyInterval validates a split notification interval tag.
func ParseNotifyInterval(s string) (NotifyInterval, error) {
	switch NotifyInterval(s) {
	case NotifyDaily, NotifyWeekly, NotifyBiweekly, NotifyMonthly, NotifyNever:
		return NotifyInterval(s), nil
	}
	return "", fmt.Errorf("unknown notification interval %q", s)
}

// NotifyDate derives a split's notification date from its creation time.
// The second return value is false for NotifyNever (no reminder is ever
// sent). The date is recomputed from stored parameters on every scheduler
// run rather than materialized at creation.
func NotifyDate(created time.Time, iv NotifyInterval) (time.Time, bool) {
	created = DateOnly(created)
	switch iv {
	case NotifyDaily:
		return created.AddDate(0, 0, 1), true
	case NotifyWeekly:
		return created.AddDate(0, 0, 7), true
	case NotifyBiweekly:
		return created.AddDate(0, 0, 14), true
	case NotifyMonthly:
		return created.AddDate(0, 1, 0), true
	case NotifyNever:
		return time.Time{}, false
	}
	panic(fmt.Sprintf("schedule: invalid notification interval %q", iv))
}
