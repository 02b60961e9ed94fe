package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/schedule"
	"github.com/paywise/paywise/internal/storage"
)

const billColumns = "id, user_id, description, amount, currency, category, start_date, frequency, payment_link, created_at"

// CreateRecurringBill persists a new recurring bill to the database.
func (s *PostgresStore) CreateRecurringBill(ctx context.Context, bill *models.RecurringBill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO recurring_bills ("+billColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		bill.ID, bill.UserID, bill.Description, bill.Amount, bill.Currency,
		bill.Category, bill.StartDate, string(bill.Frequency), bill.PaymentLink,
		bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recurring bill: %w", err)
	}
	return nil
}

// GetRecurringBill retrieves a recurring bill by ID.
func (s *PostgresStore) GetRecurringBill(ctx context.Context, id string) (*models.RecurringBill, error) {
	bill, err := scanBill(s.pool.QueryRow(ctx,
		"SELECT "+billColumns+" FROM recurring_bills WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("recurring bill %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring bill: %w", err)
	}
	return bill, nil
}

// ListRecurringBillsByUser returns a user's recurring bills, newest first.
func (s *PostgresStore) ListRecurringBillsByUser(ctx context.Context, userID string) ([]*models.RecurringBill, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+billColumns+" FROM recurring_bills WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring bills: %w", err)
	}
	defer rows.Close()
	return collectBills(rows)
}

// ListAllRecurringBills returns every recurring bill.
func (s *PostgresStore) ListAllRecurringBills(ctx context.Context) ([]*models.RecurringBill, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+billColumns+" FROM recurring_bills ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring bills: %w", err)
	}
	defer rows.Close()
	return collectBills(rows)
}

// DeleteRecurringBill removes a recurring bill by ID.
func (s *PostgresStore) DeleteRecurringBill(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM recurring_bills WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recurring bill %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanBill(row pgx.Row) (*models.RecurringBill, error) {
	bill := &models.RecurringBill{}
	var frequency string

	err := row.Scan(
		&bill.ID,
		&bill.UserID,
		&bill.Description,
		&bill.Amount,
		&bill.Currency,
		&bill.Category,
		&bill.StartDate,
		&frequency,
		&bill.PaymentLink,
		&bill.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	bill.Frequency = schedule.Frequency(frequency)
	return bill, nil
}

func collectBills(rows pgx.Rows) ([]*models.RecurringBill, error) {
	var bills []*models.RecurringBill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring bills: %w", err)
	}
	return bills, nil
}
