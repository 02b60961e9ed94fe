package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paywise/paywise/internal/middleware"
	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/notify"
	"github.com/paywise/paywise/internal/schedule"
	"github.com/paywise/paywise/internal/storage"
)

// RecurringService handles recurring bill management.
type RecurringService struct {
	store      storage.Store
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewRecurringService creates a new recurring bill service. dispatcher
// may be nil to disable confirmation emails.
func NewRecurringService(store storage.Store, dispatcher *notify.Dispatcher, logger *slog.Logger) *RecurringService {
	return &RecurringService{store: store, dispatcher: dispatcher, logger: logger}
}

// Routes registers the recurring bill endpoints. All require
// authentication.
func (s *RecurringService) Routes(r chi.Router) {
	r.Post("/", s.handleCreate)
	r.Get("/", s.handleList)
	r.Get("/{id}", s.handleGet)
	r.Delete("/{id}", s.handleDelete)
}

type createBillRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	StartDate   int64   `json:"start_date"`
	Frequency   string  `json:"frequency"`
	PaymentLink string  `json:"payment_link"`
}

func (s *RecurringService) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
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
	if req.StartDate == 0 {
		writeError(w, http.StatusBadRequest, "start_date is required")
		return
	}
	frequency, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	bill := &models.RecurringBill{
		UserID:      middleware.GetUserID(r.Context()),
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		StartDate:   schedule.DateOnly(time.Unix(req.StartDate, 0).UTC()).Unix(),
		Frequency:   frequency,
		PaymentLink: req.PaymentLink,
	}
	if err := s.store.CreateRecurringBill(r.Context(), bill); err != nil {
		s.logger.Error("failed to create recurring bill", "user_id", bill.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recurring bill")
		return
	}

	s.logger.Info("recurring bill created", "bill_id", bill.ID, "user_id", bill.UserID)

	// Confirmation email is best effort; the bill is already saved.
	if s.dispatcher != nil {
		go s.sendCreatedEmail(bill)
	}

	writeJSON(w, http.StatusCreated, s.toResponse(bill))
}

func (s *RecurringService) sendCreatedEmail(bill *models.RecurringBill) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := s.store.GetUserByID(ctx, bill.UserID)
	if err != nil {
		s.logger.Warn("confirmation email skipped, owner lookup failed", "bill_id", bill.ID, "error", err)
		return
	}

	start := time.Unix(bill.StartDate, 0).UTC()
	next := schedule.NextOccurrence(start, bill.Frequency, schedule.DateOnly(time.Now().UTC()))
	err = s.dispatcher.SendRecurringCreated(ctx, notify.RecurringCreatedData{
		UserEmail:        user.Email,
		UserName:         user.Name,
		Description:      bill.Description,
		Amount:           bill.Amount,
		Currency:         bill.Currency,
		Frequency:        string(bill.Frequency),
		Category:         bill.Category,
		FirstPaymentDate: start.Format(time.DateOnly),
		NextDueDate:      next.Format(time.DateOnly),
	})
	if err != nil {
		s.logger.Warn("confirmation email failed", "bill_id", bill.ID, "error", err)
	}
}

func (s *RecurringService) handleList(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	bills, err := s.store.ListRecurringBillsByUser(r.Context(), callerID)
	if err != nil {
		s.logger.Error("failed to list recurring bills", "user_id", callerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recurring bills")
		return
	}

	resp := make([]billResponse, 0, len(bills))
	for _, bill := range bills {
		resp = append(resp, s.toResponse(bill))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *RecurringService) handleGet(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.loadOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(bill))
}

func (s *RecurringService) handleDelete(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.loadOwned(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteRecurringBill(r.Context(), bill.ID); err != nil {
		s.logger.Error("failed to delete recurring bill", "bill_id", bill.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recurring bill")
		return
	}

	s.logger.Info("recurring bill deleted", "bill_id", bill.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *RecurringService) loadOwned(w http.ResponseWriter, r *http.Request) (*models.RecurringBill, bool) {
	id := chi.URLParam(r, "id")
	callerID := middleware.GetUserID(r.Context())

	bill, err := s.store.GetRecurringBill(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "recurring bill not found")
			return nil, false
		}
		s.logger.Error("failed to load recurring bill", "bill_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load recurring bill")
		return nil, false
	}
	if bill.UserID != callerID {
		writeError(w, http.StatusForbidden, "recurring bill belongs to another user")
		return nil, false
	}
	return bill, true
}

func (s *RecurringService) toResponse(bill *models.RecurringBill) billResponse {
	start := time.Unix(bill.StartDate, 0).UTC()
	next := schedule.NextOccurrence(start, bill.Frequency, schedule.DateOnly(time.Now().UTC()))
	return billResponse{
		ID:          bill.ID,
		UserID:      bill.UserID,
		Description: bill.Description,
		Amount:      bill.Amount,
		Currency:    bill.Currency,
		Category:    bill.Category,
		StartDate:   bill.StartDate,
		Frequency:   string(bill.Frequency),
		PaymentLink: bill.PaymentLink,
		NextDueDate: next.Format(time.DateOnly),
		CreatedAt:   bill.CreatedAt,
	}
}
