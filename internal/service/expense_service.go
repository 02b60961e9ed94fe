package service

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paywise/paywise/internal/middleware"
	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/storage"
)

// ExpenseService handles personal expense tracking.
type ExpenseService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewExpenseService creates a new expense service.
func NewExpenseService(store storage.Store, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{store: store, logger: logger}
}

// Routes registers the expense endpoints. All require authentication.
func (s *ExpenseService) Routes(r chi.Router) {
	r.Post("/", s.handleCreate)
	r.Get("/", s.handleList)
	r.Get("/{id}", s.handleGet)
	r.Delete("/{id}", s.handleDelete)
}

type createExpenseRequest struct {
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Date        int64    `json:"date"`
}

func (s *ExpenseService) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.Date == 0 {
		req.Date = time.Now().Unix()
	}

	expense := &models.Expense{
		UserID:      middleware.GetUserID(r.Context()),
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Tags:        req.Tags,
		Date:        req.Date,
	}
	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		s.logger.Error("failed to create expense", "user_id", expense.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}

	s.logger.Info("expense created", "expense_id", expense.ID, "user_id", expense.UserID)
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *ExpenseService) handleList(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	expenses, err := s.store.ListExpensesByUser(r.Context(), callerID)
	if err != nil {
		s.logger.Error("failed to list expenses", "user_id", callerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	resp := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *ExpenseService) handleGet(w http.ResponseWriter, r *http.Request) {
	expense, ok := s.loadOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *ExpenseService) handleDelete(w http.ResponseWriter, r *http.Request) {
	expense, ok := s.loadOwned(w, r)
	if !ok {
		return
	}

	// Split-linked expenses are managed through the split; deleting one
	// directly would desync the share rows.
	if expense.SplitID != "" {
		writeError(w, http.StatusBadRequest, "expense belongs to a split; delete the split instead")
		return
	}

	if err := s.store.DeleteExpense(r.Context(), expense.ID); err != nil {
		s.logger.Error("failed to delete expense", "expense_id", expense.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.logger.Info("expense deleted", "expense_id", expense.ID)
	w.WriteHeader(http.StatusNoContent)
}

// loadOwned fetches the expense from the URL and verifies the caller
// owns it. Writes the error response itself when the lookup fails.
func (s *ExpenseService) loadOwned(w http.ResponseWriter, r *http.Request) (*models.Expense, bool) {
	id := chi.URLParam(r, "id")
	callerID := middleware.GetUserID(r.Context())

	expense, err := s.store.GetExpense(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return nil, false
		}
		s.logger.Error("failed to load expense", "expense_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load expense")
		return nil, false
	}
	if expense.UserID != callerID {
		writeError(w, http.StatusForbidden, "expense belongs to another user")
		return nil, false
	}
	return expense, true
}
