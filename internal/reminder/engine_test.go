package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/notify"
	"github.com/paywise/paywise/internal/schedule"
	"github.com/paywise/paywise/internal/storage/sqlite"
)

// fakeNotifier records reminder sends, safe for concurrent use.
type fakeNotifier struct {
	mu        sync.Mutex
	recurring []notify.RecurringReminderData
	splits    []notify.SplitReminderData
}

func (f *fakeNotifier) SendRecurringReminder(_ context.Context, data notify.RecurringReminderData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recurring = append(f.recurring, data)
	return nil
}

func (f *fakeNotifier) SendSplitReminder(_ context.Context, data notify.SplitReminderData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.splits = append(f.splits, data)
	return nil
}

// failingNotifier rejects every send.
type failingNotifier struct {
	err error
}

func (f *failingNotifier) SendRecurringReminder(context.Context, notify.RecurringReminderData) error {
	return f.err
}

func (f *failingNotifier) SendSplitReminder(context.Context, notify.SplitReminderData) error {
	return f.err
}

func newTestEngine(t *testing.T, now time.Time) (*Engine, *sqlite.SQLiteStore, *fakeNotifier) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewEngine(store, notifier, logger)
	engine.now = func() time.Time { return now }
	return engine, store, notifier
}

func createUser(t *testing.T, store *sqlite.SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestRunSendsRecurringReminderDueTomorrow(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	engine, store, notifier := newTestEngine(t, now)
	ctx := context.Background()

	user := createUser(t, store, "alice@example.com", "Alice")

	// Monthly bill started 2026-07-30, next occurrence 2026-08-30 (tomorrow).
	bill := &models.RecurringBill{
		UserID:      user.ID,
		Description: "Netflix",
		Amount:      15.99,
		Currency:    "USD",
		Category:    "Subscriptions",
		StartDate:   time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC).Unix(),
		Frequency:   schedule.Monthly,
	}
	if err := store.CreateRecurringBill(ctx, bill); err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.RecurringSent != 1 {
		t.Fatalf("expected 1 recurring reminder, got %d", result.RecurringSent)
	}
	if len(notifier.recurring) != 1 {
		t.Fatalf("expected 1 send, got %d", len(notifier.recurring))
	}
	sent := notifier.recurring[0]
	if sent.UserEmail != "alice@example.com" {
		t.Errorf("unexpected recipient %q", sent.UserEmail)
	}
	if sent.DueDate != "2026-08-30" {
		t.Errorf("expected due date 2026-08-30, got %q", sent.DueDate)
	}
}

func TestRunIsIdempotentPerDueDate(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	engine, store, notifier := newTestEngine(t, now)
	ctx := context.Background()

	user := createUser(t, store, "alice@example.com", "Alice")
	bill := &models.RecurringBill{
		UserID:      user.ID,
		Description: "Gym",
		Amount:      40,
		Currency:    "USD",
		Category:    "Health",
		StartDate:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC).Unix(),
		Frequency:   schedule.Weekly,
	}
	if err := store.CreateRecurringBill(ctx, bill); err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}

	first, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	if first.RecurringSent != 1 {
		t.Fatalf("expected 1 reminder on first run, got %d", first.RecurringSent)
	}

	second, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if second.RecurringSent != 0 {
		t.Errorf("expected 0 reminders on second run, got %d", second.RecurringSent)
	}
	if second.Skipped != 1 {
		t.Errorf("expected 1 skipped on second run, got %d", second.Skipped)
	}
	if len(notifier.recurring) != 1 {
		t.Errorf("expected 1 total send, got %d", len(notifier.recurring))
	}
}

func TestRunIgnoresBillsNotDueTomorrow(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	engine, store, notifier := newTestEngine(t, now)
	ctx := context.Background()

	user := createUser(t, store, "alice@example.com", "Alice")
	// Next occurrence 2026-09-05, more than a day out.
	bill := &models.RecurringBill{
		UserID:      user.ID,
		Description: "Rent",
		Amount:      1200,
		Currency:    "USD",
		Category:    "Housing",
		StartDate:   time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC).Unix(),
		Frequency:   schedule.Monthly,
	}
	if err := store.CreateRecurringBill(ctx, bill); err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("expected no reminders, got %d", result.Total())
	}
	if len(notifier.recurring) != 0 {
		t.Errorf("expected no sends, got %d", len(notifier.recurring))
	}
}

func TestRunSendsSplitRemindersToUnpaidParticipants(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	engine, store, notifier := newTestEngine(t, now)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "Alice")
	bob := createUser(t, store, "bob@example.com", "Bob")
	carol := createUser(t, store, "carol@example.com", "Carol")

	// Created yesterday with daily notification, so the notify date is
	// today. Bob has paid, Carol has not.
	created := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC).Unix()
	split := &models.Split{
		CreatorID:      alice.ID,
		Description:    "Dinner",
		TotalAmount:    300,
		Currency:       "USD",
		NotifyInterval: schedule.NotifyDaily,
		CreatedAt:      created,
		Shares: []models.SplitShare{
			{UserID: alice.ID, AmountOwed: 100, Paid: true, IsCreator: true},
			{UserID: bob.ID, AmountOwed: 100, Paid: true},
			{UserID: carol.ID, AmountOwed: 100},
		},
	}
	if err := store.CreateSplit(ctx, split); err != nil {
		t.Fatalf("failed to create split: %v", err)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.SplitSent != 1 {
		t.Fatalf("expected 1 split reminder, got %d", result.SplitSent)
	}
	if len(notifier.splits) != 1 {
		t.Fatalf("expected 1 send, got %d", len(notifier.splits))
	}
	sent := notifier.splits[0]
	if sent.ParticipantEmail != "carol@example.com" {
		t.Errorf("expected reminder to carol, got %q", sent.ParticipantEmail)
	}
	if sent.CreatorName != "Alice" {
		t.Errorf("expected creator Alice, got %q", sent.CreatorName)
	}
	if sent.UserAmount != 100 {
		t.Errorf("expected amount 100, got %v", sent.UserAmount)
	}
}

func TestRunCountsSendFailuresAndLeavesLogUntouched(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	engine, store, _ := newTestEngine(t, now)
	engine.notifier = &failingNotifier{err: errors.New("relay unavailable")}
	ctx := context.Background()

	user := createUser(t, store, "alice@example.com", "Alice")
	bill := &models.RecurringBill{
		UserID:      user.ID,
		Description: "Netflix",
		Amount:      15.99,
		Currency:    "USD",
		Category:    "Subscriptions",
		StartDate:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC).Unix(),
		Frequency:   schedule.Monthly,
	}
	if err := store.CreateRecurringBill(ctx, bill); err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("expected 1 failed reminder, got %d", result.Failed)
	}
	if result.RecurringSent != 0 {
		t.Errorf("expected 0 sent reminders, got %d", result.RecurringSent)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "relay unavailable") {
		t.Errorf("expected one error mentioning the send failure, got %v", result.Errors)
	}

	// A failed send must not be logged as delivered, so the next run
	// retries it.
	sent, err := store.WasReminderSent(ctx, models.ReminderRecurring, bill.ID, bill.UserID, "2026-08-30")
	if err != nil {
		t.Fatalf("WasReminderSent returned error: %v", err)
	}
	if sent {
		t.Error("failed reminder must not be recorded in the log")
	}

	retry, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if retry.Failed != 1 || retry.Skipped != 0 {
		t.Errorf("expected the failed reminder to be retried, got failed=%d skipped=%d", retry.Failed, retry.Skipped)
	}
}

func TestRunIgnoresSplitsWithNeverInterval(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	engine, store, notifier := newTestEngine(t, now)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "Alice")
	bob := createUser(t, store, "bob@example.com", "Bob")

	split := &models.Split{
		CreatorID:      alice.ID,
		Description:    "Groceries",
		TotalAmount:    50,
		Currency:       "USD",
		NotifyInterval: schedule.NotifyNever,
		CreatedAt:      time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC).Unix(),
		Shares: []models.SplitShare{
			{UserID: alice.ID, AmountOwed: 25, Paid: true, IsCreator: true},
			{UserID: bob.ID, AmountOwed: 25},
		},
	}
	if err := store.CreateSplit(ctx, split); err != nil {
		t.Fatalf("failed to create split: %v", err)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("expected no reminders, got %d", result.Total())
	}
	if len(notifier.splits) != 0 {
		t.Errorf("expected no sends, got %d", len(notifier.splits))
	}
}
