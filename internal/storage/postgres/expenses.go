package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/storage"
)

// CreateExpense persists a new expense to the database.
func (s *PostgresStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
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

	_, err := s.pool.Exec(ctx,
		`INSERT INTO expenses (id, user_id, description, amount, currency, category, tags, split_id, date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
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
func (s *PostgresStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense, err := scanExpense(s.pool.QueryRow(ctx,
		`SELECT id, user_id, description, amount, currency, category, tags, split_id, date, created_at
		 FROM expenses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpensesByUser returns a user's expenses, newest first.
func (s *PostgresStore) ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, description, amount, currency, category, tags, split_id, date, created_at
		 FROM expenses WHERE user_id = $1 ORDER BY created_at DESC`, userID)
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
func (s *PostgresStore) DeleteExpense(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM expenses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	expense := &models.Expense{}
	var tags string
	var splitID *string

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
	if splitID != nil {
		expense.SplitID = *splitID
	}
	return expense, nil
}
