package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/schedule"
	"github.com/paywise/paywise/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "paywise-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	bob := mustCreateUser(t, store, "bob@example.com", "Bob")

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != alice.ID || got.Name != "Alice" {
			t.Errorf("got user %+v, want Alice", got)
		}
	})

	t.Run("GetUserByEmail missing", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other Alice", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("expected error creating duplicate email")
		}
	})

	t.Run("ListUsers excludes caller", func(t *testing.T) {
		users, err := store.ListUsers(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(users) != 1 || users[0].ID != bob.ID {
			t.Errorf("expected only Bob, got %d users", len(users))
		}
	})

	t.Run("SearchUsers matches name and email", func(t *testing.T) {
		users, err := store.SearchUsers(ctx, "bob", alice.ID)
		if err != nil {
			t.Fatalf("SearchUsers failed: %v", err)
		}
		if len(users) != 1 || users[0].ID != bob.ID {
			t.Errorf("expected Bob, got %d users", len(users))
		}
	})

	t.Run("UpdateUserProfile", func(t *testing.T) {
		if err := store.UpdateUserProfile(ctx, bob.ID, "Robert", "https://cdn/qr.png"); err != nil {
			t.Fatalf("UpdateUserProfile failed: %v", err)
		}
		got, err := store.GetUserByID(ctx, bob.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Name != "Robert" || got.QRCodeURL != "https://cdn/qr.png" {
			t.Errorf("profile not updated: %+v", got)
		}
	})
}

func TestSQLiteStoreExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")

	expense := &models.Expense{
		UserID:      alice.ID,
		Description: "Groceries",
		Amount:      42.50,
		Currency:    "USD",
		Category:    "Food",
		Tags:        []string{"weekly", "food"},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if expense.ID == "" || expense.CreatedAt == 0 {
		t.Error("expected generated ID and CreatedAt")
	}

	t.Run("ListExpensesByUser round-trips tags", func(t *testing.T) {
		expenses, err := store.ListExpensesByUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListExpensesByUser failed: %v", err)
		}
		if len(expenses) != 1 {
			t.Fatalf("expected 1 expense, got %d", len(expenses))
		}
		got := expenses[0]
		if got.Description != "Groceries" || got.Amount != 42.50 {
			t.Errorf("unexpected expense: %+v", got)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "weekly" {
			t.Errorf("tags not round-tripped: %v", got.Tags)
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSQLiteStoreRecurringBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")

	bill := &models.RecurringBill{
		UserID:      alice.ID,
		Description: "Rent",
		Amount:      1200,
		Currency:    "USD",
		Category:    "Housing",
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
		Frequency:   schedule.Monthly,
		PaymentLink: "https://pay.example.com/rent",
	}
	if err := store.CreateRecurringBill(ctx, bill); err != nil {
		t.Fatalf("CreateRecurringBill failed: %v", err)
	}

	t.Run("GetRecurringBill preserves frequency", func(t *testing.T) {
		got, err := store.GetRecurringBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetRecurringBill failed: %v", err)
		}
		if got.Frequency != schedule.Monthly {
			t.Errorf("frequency = %q, want monthly", got.Frequency)
		}
		if got.StartDate != bill.StartDate {
			t.Errorf("start date = %d, want %d", got.StartDate, bill.StartDate)
		}
	})

	t.Run("ListAllRecurringBills", func(t *testing.T) {
		bills, err := store.ListAllRecurringBills(ctx)
		if err != nil {
			t.Fatalf("ListAllRecurringBills failed: %v", err)
		}
		if len(bills) != 1 {
			t.Errorf("expected 1 bill, got %d", len(bills))
		}
	})

	t.Run("DeleteRecurringBill", func(t *testing.T) {
		if err := store.DeleteRecurringBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteRecurringBill failed: %v", err)
		}
		_, err := store.GetRecurringBill(ctx, bill.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestSQLiteStoreSplits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	bob := mustCreateUser(t, store, "bob@example.com", "Bob")
	carol := mustCreateUser(t, store, "carol@example.com", "Carol")

	split := &models.Split{
		CreatorID:      alice.ID,
		Description:    "Dinner",
		TotalAmount:    300,
		Currency:       "USD",
		NotifyInterval: schedule.NotifyWeekly,
		Shares: []models.SplitShare{
			{UserID: alice.ID, AmountOwed: 100, Paid: true, IsCreator: true},
			{UserID: bob.ID, AmountOwed: 100},
			{UserID: carol.ID, AmountOwed: 100},
		},
	}
	if err := store.CreateSplit(ctx, split); err != nil {
		t.Fatalf("CreateSplit failed: %v", err)
	}

	t.Run("GetSplit returns shares summing to total", func(t *testing.T) {
		got, err := store.GetSplit(ctx, split.ID)
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		if len(got.Shares) != 3 {
			t.Fatalf("expected 3 shares, got %d", len(got.Shares))
		}
		var sum float64
		for _, share := range got.Shares {
			sum += share.AmountOwed
		}
		if sum != got.TotalAmount {
			t.Errorf("shares sum to %v, total is %v", sum, got.TotalAmount)
		}
		if !got.Shares[0].IsCreator {
			t.Error("expected creator share first")
		}
	})

	t.Run("ListSplitsByUser includes participants", func(t *testing.T) {
		splits, err := store.ListSplitsByUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListSplitsByUser failed: %v", err)
		}
		if len(splits) != 1 || splits[0].ID != split.ID {
			t.Errorf("expected Bob to see the split, got %d splits", len(splits))
		}
	})

	t.Run("MarkSharePaid", func(t *testing.T) {
		if err := store.MarkSharePaid(ctx, split.ID, bob.ID); err != nil {
			t.Fatalf("MarkSharePaid failed: %v", err)
		}
		got, err := store.GetSplit(ctx, split.ID)
		if err != nil {
			t.Fatalf("GetSplit failed: %v", err)
		}
		for _, share := range got.Shares {
			if share.UserID == bob.ID && !share.Paid {
				t.Error("Bob's share should be paid")
			}
		}

		if err := store.MarkSharePaid(ctx, split.ID, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing share, got %v", err)
		}
	})

	t.Run("DeleteSplit cascades shares and expenses", func(t *testing.T) {
		expense := &models.Expense{
			UserID:      bob.ID,
			Description: "Your share of Dinner",
			Amount:      -100,
			Currency:    "USD",
			Category:    "Split",
			SplitID:     split.ID,
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		if err := store.DeleteSplit(ctx, split.ID); err != nil {
			t.Fatalf("DeleteSplit failed: %v", err)
		}
		if _, err := store.GetSplit(ctx, split.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		expenses, err := store.ListExpensesByUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListExpensesByUser failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("expected linked expense to cascade, got %d expenses", len(expenses))
		}
	})
}

func TestSQLiteStoreReminderLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := &models.ReminderLogEntry{
		Kind:         models.ReminderRecurring,
		ObligationID: "bill-1",
		UserID:       "user-1",
		DueDate:      "2024-07-01",
	}

	sent, err := store.WasReminderSent(ctx, entry.Kind, entry.ObligationID, entry.UserID, entry.DueDate)
	if err != nil {
		t.Fatalf("WasReminderSent failed: %v", err)
	}
	if sent {
		t.Error("expected no reminder recorded yet")
	}

	if err := store.RecordReminderSent(ctx, entry); err != nil {
		t.Fatalf("RecordReminderSent failed: %v", err)
	}
	// Recording the same tuple twice is a no-op.
	if err := store.RecordReminderSent(ctx, entry); err != nil {
		t.Fatalf("RecordReminderSent (duplicate) failed: %v", err)
	}

	sent, err = store.WasReminderSent(ctx, entry.Kind, entry.ObligationID, entry.UserID, entry.DueDate)
	if err != nil {
		t.Fatalf("WasReminderSent failed: %v", err)
	}
	if !sent {
		t.Error("expected reminder to be recorded")
	}

	// A different due date is a fresh period.
	sent, err = store.WasReminderSent(ctx, entry.Kind, entry.ObligationID, entry.UserID, "2024-08-01")
	if err != nil {
		t.Fatalf("WasReminderSent failed: %v", err)
	}
	if sent {
		t.Error("different due date should not be marked sent")
	}
}
