package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/schedule"
	"github.com/paywise/paywise/internal/storage"
)

// CreateSplit persists a split and its share rows in one transaction.
func (s *SQLiteStore) CreateSplit(ctx context.Context, split *models.Split) error {
	if split.ID == "" {
		split.ID = uuid.New().String()
	}
	if split.CreatedAt == 0 {
		split.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO splits (id, creator_id, description, total_amount, currency, notify_interval, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		split.ID, split.CreatorID, split.Description, split.TotalAmount,
		split.Currency, string(split.NotifyInterval), split.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	for i := range split.Shares {
		share := &split.Shares[i]
		if share.ID == "" {
			share.ID = uuid.New().String()
		}
		share.SplitID = split.ID
		if share.CreatedAt == 0 {
			share.CreatedAt = split.CreatedAt
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO split_shares (id, split_id, user_id, amount_owed, paid, is_creator, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			share.ID, share.SplitID, share.UserID, share.AmountOwed,
			share.Paid, share.IsCreator, share.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSplit retrieves a split with its shares.
func (s *SQLiteStore) GetSplit(ctx context.Context, id string) (*models.Split, error) {
	split, err := scanSplit(s.db.QueryRowContext(ctx,
		`SELECT id, creator_id, description, total_amount, currency, notify_interval, created_at
		 FROM splits WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("split %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}

	if err := s.loadShares(ctx, split); err != nil {
		return nil, err
	}
	return split, nil
}

// ListSplitsByUser returns splits the user created or participates in,
// newest first.
func (s *SQLiteStore) ListSplitsByUser(ctx context.Context, userID string) ([]*models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT sp.id, sp.creator_id, sp.description, sp.total_amount, sp.currency, sp.notify_interval, sp.created_at
		 FROM splits sp
		 LEFT JOIN split_shares sh ON sh.split_id = sp.id
		 WHERE sp.creator_id = ? OR sh.user_id = ?
		 ORDER BY sp.created_at DESC`,
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()
	return s.collectSplits(ctx, rows)
}

// ListAllSplits returns every split with shares.
func (s *SQLiteStore) ListAllSplits(ctx context.Context) ([]*models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, creator_id, description, total_amount, currency, notify_interval, created_at
		 FROM splits ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()
	return s.collectSplits(ctx, rows)
}

// MarkSharePaid marks one participant's share as settled.
func (s *SQLiteStore) MarkSharePaid(ctx context.Context, splitID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE split_shares SET paid = 1 WHERE split_id = ? AND user_id = ?",
		splitID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark share paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check share update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("share for split %s, user %s: %w", splitID, userID, storage.ErrNotFound)
	}
	return nil
}

// DeleteSplit removes a split; shares and linked expenses cascade via
// foreign keys.
func (s *SQLiteStore) DeleteSplit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM splits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete split: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check split delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("split %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanSplit(row interface{ Scan(...any) error }) (*models.Split, error) {
	split := &models.Split{}
	var interval string

	err := row.Scan(
		&split.ID,
		&split.CreatorID,
		&split.Description,
		&split.TotalAmount,
		&split.Currency,
		&interval,
		&split.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	split.NotifyInterval = schedule.NotifyInterval(interval)
	return split, nil
}

func (s *SQLiteStore) loadShares(ctx context.Context, split *models.Split) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, split_id, user_id, amount_owed, paid, is_creator, created_at
		 FROM split_shares WHERE split_id = ? ORDER BY is_creator DESC, created_at`,
		split.ID)
	if err != nil {
		return fmt.Errorf("failed to get split shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var share models.SplitShare
		err := rows.Scan(
			&share.ID,
			&share.SplitID,
			&share.UserID,
			&share.AmountOwed,
			&share.Paid,
			&share.IsCreator,
			&share.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan split share: %w", err)
		}
		split.Shares = append(split.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate split shares: %w", err)
	}
	return nil
}

func (s *SQLiteStore) collectSplits(ctx context.Context, rows *sql.Rows) ([]*models.Split, error) {
	var splits []*models.Split
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	// Shares are loaded per split after the listing query completes;
	// sqlite allows only one active statement per connection in some
	// configurations, so nested queries are avoided.
	for _, split := range splits {
		if err := s.loadShares(ctx, split); err != nil {
			return nil, err
		}
	}
	return splits, nil
}
