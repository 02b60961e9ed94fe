package models

// Expense represents a single tracked expense for one user.
//
// Splits also write expenses: the creator gets one for the full amount and
// each participant gets one with a negative amount (money they owe). Those
// rows carry the SplitID link and are removed when the split is deleted.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// UserID is the owner of this expense.
	UserID string

	// Description is the human-readable label (e.g. "Groceries").
	Description string

	// Amount is the expense amount. Negative amounts indicate money owed
	// to someone else through a split.
	Amount float64

	// Currency is the ISO 4217 currency code (e.g. "USD").
	Currency string

	// Category is the user-selected category (e.g. "Food", "Split").
	Category string

	// Tags are free-form labels attached to the expense.
	Tags []string

	// SplitID links the expense to the split that generated it.
	// Empty for plain personal expenses.
	SplitID string

	// Date is the Unix timestamp of when the expense occurred.
	Date int64

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}
