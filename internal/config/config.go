// Package config loads server configuration from environment variables,
// with optional .env file support for local development.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the server.
type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	DBDriver      string `mapstructure:"DB_DRIVER"`
	DBPath        string `mapstructure:"DB_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort string `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	AppURL           string `mapstructure:"APP_URL"`
	CronSecret       string `mapstructure:"CRON_SECRET"`
	ReminderSchedule string `mapstructure:"REMINDER_SCHEDULE"`
	Environment      string `mapstructure:"ENVIRONMENT"`
}

// Load reads configuration from a .env file (if present) and the
// environment. Missing required values are reported as errors.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_PATH", "data/paywise.db")
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("REMINDER_SCHEDULE", "0 8 * * *") // At 08:00 every day.
	viper.SetDefault("ENVIRONMENT", "development")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range []string{
		"SERVER_PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL",
		"JWT_SECRET", "TOKEN_TTL_HOURS",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_FROM",
		"APP_URL", "CRON_SECRET", "REMINDER_SCHEDULE", "ENVIRONMENT",
	} {
		_ = viper.BindEnv(key)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if config.DBDriver == "postgres" && config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set when DB_DRIVER=postgres")
	}

	return &config, nil
}

// IsDevelopment reports whether the server runs in development mode.
// Development mode relaxes the cron endpoint's authentication.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
