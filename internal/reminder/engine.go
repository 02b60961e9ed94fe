// Package reminder implements the daily reminder engine. It scans
// recurring bills and unpaid split shares, derives due dates, and sends
// email reminders with at-most-once delivery per due date.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paywise/paywise/internal/metrics"
	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/notify"
	"github.com/paywise/paywise/internal/schedule"
	"github.com/paywise/paywise/internal/storage"
)

// Notifier sends the reminder emails the engine produces.
// *notify.Dispatcher satisfies it.
type Notifier interface {
	SendRecurringReminder(ctx context.Context, data notify.RecurringReminderData) error
	SendSplitReminder(ctx context.Context, data notify.SplitReminderData) error
}

// Result summarizes one engine run.
type Result struct {
	// RecurringSent is the number of recurring bill reminders delivered.
	RecurringSent int

	// SplitSent is the number of split share reminders delivered.
	SplitSent int

	// Skipped counts reminders suppressed because they were already
	// sent for the same due date.
	Skipped int

	// Failed counts reminders that could not be delivered.
	Failed int

	// Errors holds one message per failed delivery.
	Errors []string
}

// Total returns the number of reminders delivered in this run.
func (r *Result) Total() int {
	return r.RecurringSent + r.SplitSent
}

// Engine drives one reminder pass over all bills and splits.
type Engine struct {
	store    storage.Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates a reminder engine.
func NewEngine(store storage.Store, notifier Notifier, logger *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// job is one reminder ready to send, paired with its idempotency key.
type job struct {
	kind models.ReminderKind
	send func(ctx context.Context) error
	log  models.ReminderLogEntry
}

// Run executes one reminder pass. Recurring bills due tomorrow and
// unpaid split shares whose notify date is today each produce one email,
// deduplicated against the reminder log. Send failures are counted but
// do not abort the run.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.notifier == nil {
		e.logger.Warn("no notifier configured, skipping reminder run")
		return &Result{}, nil
	}

	today := schedule.DateOnly(e.now().UTC())
	tomorrow := today.AddDate(0, 0, 1)

	jobs, recurringSkipped, err := e.collectRecurring(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}
	splitJobs, splitSkipped, err := e.collectSplits(ctx, today, tomorrow)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, splitJobs...)

	result := &Result{Skipped: recurringSkipped + splitSkipped}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			metrics.RemindersAttempted.WithLabelValues(string(j.kind)).Inc()

			if err := j.send(ctx); err != nil {
				metrics.RemindersFailed.WithLabelValues(string(j.kind)).Inc()
				mu.Lock()
				result.Failed++
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s reminder %s for user %s: %v", j.kind, j.log.ObligationID, j.log.UserID, err))
				mu.Unlock()
				return
			}

			entry := j.log
			entry.SentAt = e.now().Unix()
			if err := e.store.RecordReminderSent(ctx, &entry); err != nil {
				// The email went out; a failed log write means the next
				// run may send a duplicate, which is preferable to
				// silently dropping reminders.
				e.logger.Error("failed to record reminder",
					"kind", j.kind, "obligation_id", entry.ObligationID, "error", err)
			}

			metrics.RemindersSent.WithLabelValues(string(j.kind)).Inc()
			mu.Lock()
			switch j.kind {
			case models.ReminderRecurring:
				result.RecurringSent++
			case models.ReminderSplit:
				result.SplitSent++
			}
			mu.Unlock()
		}(j)
	}
	wg.Wait()

	e.logger.Info("reminder run complete",
		"recurring_sent", result.RecurringSent,
		"split_sent", result.SplitSent,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// collectRecurring finds bills whose next occurrence falls within
// [tomorrow, tomorrow+24h) and builds a reminder job for each, unless
// one was already sent for that due date.
func (e *Engine) collectRecurring(ctx context.Context, today, tomorrow time.Time) ([]job, int, error) {
	bills, err := e.store.ListAllRecurringBills(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recurring bills: %w", err)
	}

	var jobs []job
	skipped := 0
	for _, bill := range bills {
		start := time.Unix(bill.StartDate, 0).UTC()
		due := schedule.NextOccurrence(start, bill.Frequency, today)
		if due.Before(tomorrow) || !due.Before(tomorrow.AddDate(0, 0, 1)) {
			continue
		}
		dueDate := due.Format(time.DateOnly)

		sent, err := e.store.WasReminderSent(ctx, models.ReminderRecurring, bill.ID, bill.UserID, dueDate)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to check reminder log: %w", err)
		}
		if sent {
			metrics.RemindersSkipped.WithLabelValues(string(models.ReminderRecurring)).Inc()
			skipped++
			continue
		}

		user, err := e.store.GetUserByID(ctx, bill.UserID)
		if err != nil {
			e.logger.Warn("skipping bill with missing owner", "bill_id", bill.ID, "error", err)
			continue
		}

		jobs = append(jobs, job{
			kind: models.ReminderRecurring,
			send: func(ctx context.Context) error {
				return e.notifier.SendRecurringReminder(ctx, notify.RecurringReminderData{
					UserEmail:   user.Email,
					UserName:    user.Name,
					Description: bill.Description,
					Provider:    bill.Category,
					Amount:      bill.Amount,
					Currency:    bill.Currency,
					DueDate:     dueDate,
				})
			},
			log: models.ReminderLogEntry{
				Kind:         models.ReminderRecurring,
				ObligationID: bill.ID,
				UserID:       bill.UserID,
				DueDate:      dueDate,
			},
		})
	}
	return jobs, skipped, nil
}

// collectSplits finds unpaid participant shares whose notify date falls
// within [today, tomorrow) and builds a reminder job for each.
func (e *Engine) collectSplits(ctx context.Context, today, tomorrow time.Time) ([]job, int, error) {
	splits, err := e.store.ListAllSplits(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list splits: %w", err)
	}

	var jobs []job
	skipped := 0
	for _, split := range splits {
		created := time.Unix(split.CreatedAt, 0).UTC()
		notifyAt, ok := schedule.NotifyDate(created, split.NotifyInterval)
		if !ok {
			continue
		}
		notifyAt = schedule.DateOnly(notifyAt)
		if notifyAt.Before(today) || !notifyAt.Before(tomorrow) {
			continue
		}
		dueDate := notifyAt.Format(time.DateOnly)

		creator, err := e.store.GetUserByID(ctx, split.CreatorID)
		if err != nil {
			e.logger.Warn("skipping split with missing creator", "split_id", split.ID, "error", err)
			continue
		}

		for _, share := range split.Shares {
			if share.Paid || share.IsCreator {
				continue
			}

			sent, err := e.store.WasReminderSent(ctx, models.ReminderSplit, split.ID, share.UserID, dueDate)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to check reminder log: %w", err)
			}
			if sent {
				metrics.RemindersSkipped.WithLabelValues(string(models.ReminderSplit)).Inc()
				skipped++
				continue
			}

			participant, err := e.store.GetUserByID(ctx, share.UserID)
			if err != nil {
				e.logger.Warn("skipping share with missing participant",
					"split_id", split.ID, "user_id", share.UserID, "error", err)
				continue
			}

			jobs = append(jobs, job{
				kind: models.ReminderSplit,
				send: func(ctx context.Context) error {
					return e.notifier.SendSplitReminder(ctx, notify.SplitReminderData{
						ParticipantEmail: participant.Email,
						ParticipantName:  participant.Name,
						CreatorName:      creator.Name,
						Description:      split.Description,
						UserAmount:       share.AmountOwed,
						Currency:         split.Currency,
						DueDate:          dueDate,
					})
				},
				log: models.ReminderLogEntry{
					Kind:         models.ReminderSplit,
					ObligationID: split.ID,
					UserID:       share.UserID,
					DueDate:      dueDate,
				},
			})
		}
	}
	return jobs, skipped, nil
}
