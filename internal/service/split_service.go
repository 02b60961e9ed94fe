package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/paywise/paywise/internal/middleware"
	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/notify"
	"github.com/paywise/paywise/internal/schedule"
	"github.com/paywise/paywise/internal/split"
	"github.com/paywise/paywise/internal/storage"
)

// SplitService handles shared expense splits: creation with share
// allocation, settlement, and deletion.
type SplitService struct {
	store      storage.Store
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewSplitService creates a new split service. dispatcher may be nil to
// disable participant notification emails.
func NewSplitService(store storage.Store, dispatcher *notify.Dispatcher, logger *slog.Logger) *SplitService {
	return &SplitService{store: store, dispatcher: dispatcher, logger: logger}
}

// Routes registers the split endpoints. All require authentication.
func (s *SplitService) Routes(r chi.Router) {
	r.Post("/", s.handleCreate)
	r.Get("/", s.handleList)
	r.Get("/{id}", s.handleGet)
	r.Post("/{id}/shares/{userID}/pay", s.handleMarkPaid)
	r.Delete("/{id}", s.handleDelete)
}

type createSplitRequest struct {
	Description    string             `json:"description"`
	TotalAmount    float64            `json:"total_amount"`
	Currency       string             `json:"currency"`
	SplitMode      string             `json:"split_mode"`
	NotifyInterval string             `json:"notify_interval"`
	Participants   []participantInput `json:"participants"`
}

type participantInput struct {
	UserID string   `json:"user_id"`
	Amount *float64 `json:"amount,omitempty"`
}

func (s *SplitService) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSplitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	creatorID := middleware.GetUserID(r.Context())

	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	mode, err := split.ParseMode(req.SplitMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	interval := schedule.NotifyNever
	if req.NotifyInterval != "" {
		interval, err = schedule.ParseNotifyInterval(req.NotifyInterval)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	participantIDs := make([]string, 0, len(req.Participants))
	custom := make(map[string]decimal.Decimal)
	for _, p := range req.Participants {
		if p.UserID == creatorID {
			writeError(w, http.StatusBadRequest, "creator cannot be listed as a participant")
			return
		}
		participantIDs = append(participantIDs, p.UserID)
		if p.Amount != nil {
			custom[p.UserID] = decimal.NewFromFloat(*p.Amount)
		}
	}

	// Every participant must be a registered user before any row is
	// written.
	participants := make(map[string]*models.User, len(participantIDs))
	for _, id := range participantIDs {
		user, err := s.store.GetUserByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("participant %s does not exist", id))
				return
			}
			s.logger.Error("failed to load participant", "user_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create split")
			return
		}
		participants[id] = user
	}

	total := decimal.NewFromFloat(req.TotalAmount)
	shares, err := split.Allocate(total, participantIDs, mode, custom)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	creatorShare := split.CreatorShare(total, shares)

	model := &models.Split{
		CreatorID:      creatorID,
		Description:    req.Description,
		TotalAmount:    req.TotalAmount,
		Currency:       req.Currency,
		NotifyInterval: interval,
		Shares: []models.SplitShare{
			{UserID: creatorID, AmountOwed: creatorShare.InexactFloat64(), Paid: true, IsCreator: true},
		},
	}
	for _, id := range participantIDs {
		model.Shares = append(model.Shares, models.SplitShare{
			UserID:     id,
			AmountOwed: shares[id].InexactFloat64(),
		})
	}

	if err := s.store.CreateSplit(r.Context(), model); err != nil {
		s.logger.Error("failed to create split", "creator_id", creatorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create split")
		return
	}

	if err := s.createLinkedExpenses(r.Context(), model, shares); err != nil {
		// The split exists; the dashboard just misses the expense rows.
		s.logger.Error("failed to create linked expenses", "split_id", model.ID, "error", err)
	}

	s.logger.Info("split created",
		"split_id", model.ID, "creator_id", creatorID, "participants", len(participantIDs))

	if s.dispatcher != nil {
		go s.sendAddedEmails(model, participants)
	}

	writeJSON(w, http.StatusCreated, toSplitResponse(model))
}

// createLinkedExpenses mirrors a split into the expense ledger: the
// creator gets one row for the full amount paid, each participant a
// negative row for the share they owe.
func (s *SplitService) createLinkedExpenses(ctx context.Context, model *models.Split, shares map[string]decimal.Decimal) error {
	now := time.Now().Unix()
	expenses := []*models.Expense{{
		UserID:      model.CreatorID,
		Description: model.Description,
		Amount:      model.TotalAmount,
		Currency:    model.Currency,
		Category:    "Split",
		SplitID:     model.ID,
		Date:        now,
	}}
	for userID, share := range shares {
		expenses = append(expenses, &models.Expense{
			UserID:      userID,
			Description: model.Description,
			Amount:      -share.InexactFloat64(),
			Currency:    model.Currency,
			Category:    "Split",
			SplitID:     model.ID,
			Date:        now,
		})
	}
	for _, e := range expenses {
		if err := s.store.CreateExpense(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *SplitService) sendAddedEmails(model *models.Split, participants map[string]*models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	creator, err := s.store.GetUserByID(ctx, model.CreatorID)
	if err != nil {
		s.logger.Warn("split emails skipped, creator lookup failed", "split_id", model.ID, "error", err)
		return
	}

	dueDate := "not scheduled"
	created := time.Unix(model.CreatedAt, 0).UTC()
	if notifyAt, ok := schedule.NotifyDate(created, model.NotifyInterval); ok {
		dueDate = notifyAt.Format(time.DateOnly)
	}

	for _, share := range model.Shares {
		if share.IsCreator {
			continue
		}
		participant, ok := participants[share.UserID]
		if !ok {
			continue
		}
		err := s.dispatcher.SendSplitAdded(ctx, notify.SplitAddedData{
			ParticipantEmail: participant.Email,
			ParticipantName:  participant.Name,
			CreatorName:      creator.Name,
			Description:      model.Description,
			TotalAmount:      model.TotalAmount,
			UserAmount:       share.AmountOwed,
			Currency:         model.Currency,
			DueDate:          dueDate,
		})
		if err != nil {
			s.logger.Warn("split notification failed",
				"split_id", model.ID, "user_id", share.UserID, "error", err)
		}
	}
}

func (s *SplitService) handleList(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	splits, err := s.store.ListSplitsByUser(r.Context(), callerID)
	if err != nil {
		s.logger.Error("failed to list splits", "user_id", callerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list splits")
		return
	}

	resp := make([]splitResponse, 0, len(splits))
	for _, sp := range splits {
		resp = append(resp, toSplitResponse(sp))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *SplitService) handleGet(w http.ResponseWriter, r *http.Request) {
	model, ok := s.load(w, r)
	if !ok {
		return
	}
	if !s.isMember(model, middleware.GetUserID(r.Context())) {
		writeError(w, http.StatusForbidden, "split belongs to other users")
		return
	}
	writeJSON(w, http.StatusOK, toSplitResponse(model))
}

// handleMarkPaid settles one participant's share. The split creator can
// mark any share; a participant can mark only their own.
func (s *SplitService) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	model, ok := s.load(w, r)
	if !ok {
		return
	}
	shareUserID := chi.URLParam(r, "userID")
	callerID := middleware.GetUserID(r.Context())

	if callerID != model.CreatorID && callerID != shareUserID {
		writeError(w, http.StatusForbidden, "only the creator or the share owner can settle a share")
		return
	}

	if err := s.store.MarkSharePaid(r.Context(), model.ID, shareUserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "share not found")
			return
		}
		s.logger.Error("failed to mark share paid",
			"split_id", model.ID, "user_id", shareUserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark share paid")
		return
	}

	s.logger.Info("share marked paid", "split_id", model.ID, "user_id", shareUserID)

	updated, err := s.store.GetSplit(r.Context(), model.ID)
	if err != nil {
		s.logger.Error("failed to reload split", "split_id", model.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reload split")
		return
	}
	writeJSON(w, http.StatusOK, toSplitResponse(updated))
}

// handleDelete removes a split; share rows and linked expenses cascade.
func (s *SplitService) handleDelete(w http.ResponseWriter, r *http.Request) {
	model, ok := s.load(w, r)
	if !ok {
		return
	}
	if middleware.GetUserID(r.Context()) != model.CreatorID {
		writeError(w, http.StatusForbidden, "only the creator can delete a split")
		return
	}

	if err := s.store.DeleteSplit(r.Context(), model.ID); err != nil {
		s.logger.Error("failed to delete split", "split_id", model.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete split")
		return
	}

	s.logger.Info("split deleted", "split_id", model.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *SplitService) load(w http.ResponseWriter, r *http.Request) (*models.Split, bool) {
	id := chi.URLParam(r, "id")

	model, err := s.store.GetSplit(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "split not found")
			return nil, false
		}
		s.logger.Error("failed to load split", "split_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load split")
		return nil, false
	}
	return model, true
}

func (s *SplitService) isMember(model *models.Split, userID string) bool {
	if model.CreatorID == userID {
		return true
	}
	for _, share := range model.Shares {
		if share.UserID == userID {
			return true
		}
	}
	return false
}
