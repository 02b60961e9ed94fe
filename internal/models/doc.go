// Package models defines the core domain models for Paywise.
//
// # Models
//
//   - User: a registered account; also a potential split participant
//   - Expense: a single tracked expense (may be linked to a split)
//   - RecurringBill: a bill that repeats on a fixed frequency
//   - Split: a shared expense divided among participants
//   - SplitShare: one participant's portion of a split
//   - ReminderLogEntry: record of a delivered reminder, used for dedup
//
// # Design Principles
//
//  1. Avoid circular references: relationships use ID strings, not pointers.
//  2. Timestamps are Unix seconds; date-only values (bill start dates,
//     reminder due dates) are normalized to midnight UTC.
//  3. Derived values (next due date, split notification date) are never
//     stored - they are recomputed from the schedule parameters on demand.
package models
