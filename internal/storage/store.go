// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/paywise/paywise/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist.
// Implementations wrap it with the entity kind and ID.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations used by the services and the
// reminder engine. The abstraction allows swapping storage backends
// (SQLite, PostgreSQL) without changing callers.
type Store interface {
	// Users

	// CreateUser persists a new user. Fails if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns all users except excludeID, ordered by name.
	// Used by the split participant picker.
	ListUsers(ctx context.Context, excludeID string) ([]*models.User, error)

	// SearchUsers returns users whose name or email contains query,
	// excluding excludeID.
	SearchUsers(ctx context.Context, query, excludeID string) ([]*models.User, error)

	// UpdateUserProfile updates the mutable profile fields.
	UpdateUserProfile(ctx context.Context, id, name, qrCodeURL string) error

	// Expenses

	// CreateExpense persists a new expense, generating ID/CreatedAt.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// ListExpensesByUser returns a user's expenses, newest first.
	ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, id string) error

	// Recurring bills

	// CreateRecurringBill persists a new bill, generating ID/CreatedAt.
	CreateRecurringBill(ctx context.Context, bill *models.RecurringBill) error

	// GetRecurringBill retrieves a bill by ID.
	GetRecurringBill(ctx context.Context, id string) (*models.RecurringBill, error)

	// ListRecurringBillsByUser returns a user's bills, newest first.
	ListRecurringBillsByUser(ctx context.Context, userID string) ([]*models.RecurringBill, error)

	// ListAllRecurringBills returns every bill. Used by the reminder
	// engine, which derives due dates itself.
	ListAllRecurringBills(ctx context.Context) ([]*models.RecurringBill, error)

	// DeleteRecurringBill removes a bill by ID.
	DeleteRecurringBill(ctx context.Context, id string) error

	// Splits

	// CreateSplit persists a split and its share rows in one
	// transaction, generating IDs/CreatedAt.
	CreateSplit(ctx context.Context, s *models.Split) error

	// GetSplit retrieves a split with its shares.
	GetSplit(ctx context.Context, id string) (*models.Split, error)

	// ListSplitsByUser returns splits the user created or participates
	// in, newest first, with shares populated.
	ListSplitsByUser(ctx context.Context, userID string) ([]*models.Split, error)

	// ListAllSplits returns every split with shares. Used by the
	// reminder engine.
	ListAllSplits(ctx context.Context) ([]*models.Split, error)

	// MarkSharePaid marks one participant's share as settled.
	MarkSharePaid(ctx context.Context, splitID, userID string) error

	// DeleteSplit removes a split; shares and linked expenses cascade.
	DeleteSplit(ctx context.Context, id string) error

	// Reminder log

	// WasReminderSent reports whether a reminder for this
	// (kind, obligation, user, due date) tuple was already delivered.
	WasReminderSent(ctx context.Context, kind models.ReminderKind, obligationID, userID, dueDate string) (bool, error)

	// RecordReminderSent logs a delivered reminder.
	RecordReminderSent(ctx context.Context, entry *models.ReminderLogEntry) error

	// Close releases any resources held by the store.
	Close() error
}
