package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paywise/paywise/internal/auth"
	"github.com/paywise/paywise/internal/config"
	"github.com/paywise/paywise/internal/notify"
	"github.com/paywise/paywise/internal/reminder"
	"github.com/paywise/paywise/internal/service"
	"github.com/paywise/paywise/internal/storage"
	"github.com/paywise/paywise/internal/storage/postgres"
	"github.com/paywise/paywise/internal/storage/sqlite"
	"github.com/paywise/paywise/pkg/logging"
)

func main() {
	logging.Setup()
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("storage initialized", "driver", cfg.DBDriver)

	// Email is optional; without an SMTP host the server runs with
	// notifications disabled.
	var dispatcher *notify.Dispatcher
	var notifier reminder.Notifier
	if cfg.SMTPHost != "" {
		mailer := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		dispatcher = notify.NewDispatcher(mailer, cfg.AppURL, logger)
		notifier = dispatcher
	} else {
		logger.Warn("SMTP_HOST not set, email notifications disabled")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	engine := reminder.NewEngine(store, notifier, logger)
	scheduler := reminder.NewScheduler(engine, cfg.ReminderSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}

	router := service.NewRouter(service.Services{
		Auth:      service.NewAuthService(authenticator, jwtManager, store, logger),
		Users:     service.NewUserService(store, logger),
		Expenses:  service.NewExpenseService(store, logger),
		Recurring: service.NewRecurringService(store, dispatcher, logger),
		Splits:    service.NewSplitService(store, dispatcher, logger),
		Cron:      service.NewCronService(engine, cfg.CronSecret, cfg.IsDevelopment(), logger),
	}, jwtManager)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Let an in-flight reminder run finish before closing the store.
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return postgres.New(ctx, cfg.DatabaseURL)
	case "sqlite", "":
		return sqlite.New(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
