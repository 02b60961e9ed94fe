package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/paywise/paywise/internal/models"
)

// WasReminderSent reports whether a reminder for this tuple was already
// delivered.
func (s *SQLiteStore) WasReminderSent(ctx context.Context, kind models.ReminderKind, obligationID, userID, dueDate string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reminder_log
		 WHERE kind = ? AND obligation_id = ? AND user_id = ? AND due_date = ?`,
		string(kind), obligationID, userID, dueDate,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reminder log: %w", err)
	}
	return count > 0, nil
}

// RecordReminderSent logs a delivered reminder. Inserting an existing
// tuple is a no-op rather than an error, so a race between two concurrent
// runs cannot fail the winning send.
func (s *SQLiteStore) RecordReminderSent(ctx context.Context, entry *models.ReminderLogEntry) error {
	if entry.SentAt == 0 {
		entry.SentAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reminder_log (kind, obligation_id, user_id, due_date, sent_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(entry.Kind), entry.ObligationID, entry.UserID, entry.DueDate, entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}
	return nil
}
