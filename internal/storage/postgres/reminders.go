package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/paywise/paywise/internal/models"
)

// WasReminderSent reports whether a reminder for this tuple was already
// delivered.
func (s *PostgresStore) WasReminderSent(ctx context.Context, kind models.ReminderKind, obligationID, userID, dueDate string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM reminder_log
		 WHERE kind = $1 AND obligation_id = $2 AND user_id = $3 AND due_date = $4`,
		string(kind), obligationID, userID, dueDate,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reminder log: %w", err)
	}
	return count > 0, nil
}

// RecordReminderSent logs a delivered reminder. Conflicting inserts are
// ignored so a race between two concurrent runs cannot fail the winning
// send.
func (s *PostgresStore) RecordReminderSent(ctx context.Context, entry *models.ReminderLogEntry) error {
	if entry.SentAt == 0 {
		entry.SentAt = time.Now().Unix()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO reminder_log (kind, obligation_id, user_id, due_date, sent_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT DO NOTHING`,
		string(entry.Kind), entry.ObligationID, entry.UserID, entry.DueDate, entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}
	return nil
}
