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

// CreateSplit persists a split and its share rows in one transaction.
func (s *PostgresStore) CreateSplit(ctx context.Context, split *models.Split) error {
	if split.ID == "" {
		split.ID = uuid.New().String()
	}
	if split.CreatedAt == 0 {
		split.CreatedAt = time.Now().Unix()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO splits (id, creator_id, description, total_amount, currency, notify_interval, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
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

		_, err = tx.Exec(ctx,
			`INSERT INTO split_shares (id, split_id, user_id, amount_owed, paid, is_creator, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			share.ID, share.SplitID, share.UserID, share.AmountOwed,
			share.Paid, share.IsCreator, share.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split share: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSplit retrieves a split with its shares.
func (s *PostgresStore) GetSplit(ctx context.Context, id string) (*models.Split, error) {
	split, err := scanSplit(s.pool.QueryRow(ctx,
		`SELECT id, creator_id, description, total_amount, currency, notify_interval, created_at
		 FROM splits WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
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
func (s *PostgresStore) ListSplitsByUser(ctx context.Context, userID string) ([]*models.Split, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT sp.id, sp.creator_id, sp.description, sp.total_amount, sp.currency, sp.notify_interval, sp.created_at
		 FROM splits sp
		 LEFT JOIN split_shares sh ON sh.split_id = sp.id
		 WHERE sp.creator_id = $1 OR sh.user_id = $1
		 ORDER BY sp.created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()
	return s.collectSplits(ctx, rows)
}

// ListAllSplits returns every split with shares.
func (s *PostgresStore) ListAllSplits(ctx context.Context) ([]*models.Split, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, creator_id, description, total_amount, currency, notify_interval, created_at
		 FROM splits ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()
	return s.collectSplits(ctx, rows)
}

// MarkSharePaid marks one participant's share as settled.
func (s *PostgresStore) MarkSharePaid(ctx context.Context, splitID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE split_shares SET paid = TRUE WHERE split_id = $1 AND user_id = $2",
		splitID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark share paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("share for split %s, user %s: %w", splitID, userID, storage.ErrNotFound)
	}
	return nil
}

// DeleteSplit removes a split; shares and linked expenses cascade via
// foreign keys.
func (s *PostgresStore) DeleteSplit(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM splits WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete split: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("split %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanSplit(row pgx.Row) (*models.Split, error) {
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

func (s *PostgresStore) loadShares(ctx context.Context, split *models.Split) error {
	rows, err := s.pool.Query(ctx,
		`SELECT id, split_id, user_id, amount_owed, paid, is_creator, created_at
		 FROM split_shares WHERE split_id = $1 ORDER BY is_creator DESC, created_at`,
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

func (s *PostgresStore) collectSplits(ctx context.Context, rows pgx.Rows) ([]*models.Split, error) {
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

	// Shares are loaded after the listing rows are drained so the
	// nested queries never contend with the open result set.
	for _, split := range splits {
		if err := s.loadShares(ctx, split); err != nil {
			return nil, err
		}
	}
	return splits, nil
}
