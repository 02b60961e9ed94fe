package service

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paywise/paywise/internal/reminder"
)

// CronService exposes the daily reminder run over HTTP so an external
// scheduler (or an operator) can trigger it on demand.
type CronService struct {
	engine      *reminder.Engine
	secret      string
	development bool
	logger      *slog.Logger
}

// NewCronService creates a new cron service. In development mode the
// secret check is skipped.
func NewCronService(engine *reminder.Engine, secret string, development bool, logger *slog.Logger) *CronService {
	return &CronService{
		engine:      engine,
		secret:      secret,
		development: development,
		logger:      logger,
	}
}

// Routes registers the cron endpoints. POST is supported for manual
// triggering alongside the scheduler's GET.
func (s *CronService) Routes(r chi.Router) {
	r.Get("/daily-reminders", s.handleDailyReminders)
	r.Post("/daily-reminders", s.handleDailyReminders)
}

type cronSuccessResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	RecurringCount int    `json:"recurringCount"`
	SplitCount     int    `json:"splitCount"`
	TotalCount     int    `json:"totalCount"`
}

type cronErrorResponse struct {
	Error          string   `json:"error"`
	Errors         []string `json:"errors,omitempty"`
	RecurringCount int      `json:"recurringCount"`
	SplitCount     int      `json:"splitCount"`
	TotalCount     int      `json:"totalCount"`
}

func (s *CronService) handleDailyReminders(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "invalid cron secret")
		return
	}

	s.logger.Info("daily reminder run triggered", "remote", r.RemoteAddr)

	result, err := s.engine.Run(r.Context())
	if err != nil {
		s.logger.Error("daily reminder run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, cronErrorResponse{Error: "Internal server error"})
		return
	}

	if result.Failed > 0 {
		writeJSON(w, http.StatusInternalServerError, cronErrorResponse{
			Error:          fmt.Sprintf("%d reminder emails failed to send", result.Failed),
			Errors:         result.Errors,
			RecurringCount: result.RecurringSent,
			SplitCount:     result.SplitSent,
			TotalCount:     result.Total(),
		})
		return
	}

	writeJSON(w, http.StatusOK, cronSuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully sent %d reminder emails (%d recurring + %d split)",
			result.Total(), result.RecurringSent, result.SplitSent),
		RecurringCount: result.RecurringSent,
		SplitCount:     result.SplitSent,
		TotalCount:     result.Total(),
	})
}

func (s *CronService) authorized(r *http.Request) bool {
	if s.development {
		return true
	}
	authHeader := r.Header.Get("Authorization")
	return strings.TrimPrefix(authHeader, "Bearer ") == s.secret && s.secret != ""
}
