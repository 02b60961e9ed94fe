package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paywise/paywise/internal/auth"
	"github.com/paywise/paywise/internal/middleware"
)

// Services bundles the handlers the router mounts.
type Services struct {
	Auth      *AuthService
	Users     *UserService
	Expenses  *ExpenseService
	Recurring *RecurringService
	Splits    *SplitService
	Cron      *CronService
}

// NewRouter creates the chi router with all API routes and middleware.
func NewRouter(svcs Services, jwtManager *auth.JWTManager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", svcs.Auth.Routes)
		r.Route("/cron", svcs.Cron.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))
			r.Route("/users", svcs.Users.Routes)
			r.Route("/expenses", svcs.Expenses.Routes)
			r.Route("/recurring", svcs.Recurring.Routes)
			r.Route("/splits", svcs.Splits.Routes)
		})
	})

	return r
}
