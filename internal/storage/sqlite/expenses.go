package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/storage"
)

// CreateExpense persists a new expense to the database.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	var splitID any
	if expense.SplitID != "" {
		splitID = expense.SplitID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, description, amount, currency, category, tags, split_id, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, expense.Description, expense.Amount,
		expense.Currency, expense.Category, joinTags(expense.Tags), splitID,
		expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, description, amount, currency, category, tags, split_id, date, created_at
		 FROM expenses WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpensesByUser returns a user's expenses, newest first.
func (s *SQLiteStore) ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, description, amount, currency, category, tags, split_id, date, created_at
		 FROM expenses WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check expense delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	expense := &models.Expense{}
	var tags string
	var splitID sql.NullString

	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.Category,
		&tags,
		&splitID,
		&expense.Date,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	expense.Tags = splitTags(tags)
	if splitID.Valid {
		expense.SplitID = splitID.String
	}
	return expense, nil
}
