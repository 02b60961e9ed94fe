package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paywise/paywise/internal/middleware"
	"github.com/paywise/paywise/internal/storage"
)

// UserService handles the user directory, profile updates, and payment
// QR code lookups.
type UserService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store storage.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Routes registers the user endpoints. All require authentication.
func (s *UserService) Routes(r chi.Router) {
	r.Get("/", s.handleList)
	r.Get("/search", s.handleSearch)
	r.Put("/me", s.handleUpdateProfile)
	r.Get("/{id}/qr", s.handleGetQR)
}

// handleList returns all users except the caller, for the split
// participant picker.
func (s *UserService) handleList(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	users, err := s.store.ListUsers(r.Context(), callerID)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *UserService) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	callerID := middleware.GetUserID(r.Context())

	users, err := s.store.SearchUsers(r.Context(), query, callerID)
	if err != nil {
		s.logger.Error("failed to search users", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search users")
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	QRCodeURL string `json:"qr_code_url"`
}

func (s *UserService) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	callerID := middleware.GetUserID(r.Context())

	if err := s.store.UpdateUserProfile(r.Context(), callerID, req.Name, req.QRCodeURL); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to update profile", "user_id", callerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	user, err := s.store.GetUserByID(r.Context(), callerID)
	if err != nil {
		s.logger.Error("failed to reload user", "user_id", callerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	s.logger.Info("profile updated", "user_id", callerID)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type qrResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	QRCodeURL string `json:"qr_code_url"`
}

// handleGetQR returns a user's payment QR code so participants who owe
// them money can pay directly.
func (s *UserService) handleGetQR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to load user", "user_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user.QRCodeURL == "" {
		writeError(w, http.StatusNotFound, "user has no payment QR code")
		return
	}

	writeJSON(w, http.StatusOK, qrResponse{
		UserID:    user.ID,
		Name:      user.Name,
		QRCodeURL: user.QRCodeURL,
	})
}
