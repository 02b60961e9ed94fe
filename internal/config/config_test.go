package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %q", cfg.DBDriver)
	}
	if cfg.TokenTTLHours != 24 {
		t.Errorf("expected default token TTL 24, got %d", cfg.TokenTTLHours)
	}
	if cfg.ReminderSchedule != "0 8 * * *" {
		t.Errorf("expected default reminder schedule, got %q", cfg.ReminderSchedule)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected default environment to be development")
	}
}

func TestLoadFailsWithoutJWTSecret(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected missing JWT_SECRET error")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected error to mention JWT_SECRET, got %v", err)
	}
}

func TestLoadFailsForPostgresWithoutURL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected missing DATABASE_URL error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected error to mention DATABASE_URL, got %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.ServerPort)
	}
	if cfg.SMTPHost != "smtp.example.com" {
		t.Errorf("expected SMTP host from env, got %q", cfg.SMTPHost)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production environment")
	}
}
