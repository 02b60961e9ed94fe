package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paywise/paywise/internal/auth"
	"github.com/paywise/paywise/internal/middleware"
	"github.com/paywise/paywise/internal/storage"
)

// AuthService handles registration, login, and the current-user lookup.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

// Routes registers the auth endpoints. /me requires authentication; the
// rest are public.
func (s *AuthService) Routes(r chi.Router) {
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.jwtManager))
		r.Get("/me", s.handleMe)
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func (s *AuthService) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "email and name are required")
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.logger.Warn("registration failed", "email", req.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, authResponse{User: toUserResponse(user), Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, auth.ErrInvalidCredentials.Error())
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login failed", "email", req.Email, "error", err)
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.logger.Info("user logged in", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

func (s *AuthService) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("failed to load user", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
