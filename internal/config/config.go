package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultAccessTTL    = "60m"
	defaultRefreshTTL   = "168h"
	defaultResetCodeTTL = "15m"

	defaultJWTSecret       = "change-me-jwt-secret"
	defaultRefreshPepper   = "change-me-refresh-pepper"
	defaultResetCodePepper = "change-me-reset-pepper"
)

// Config is the runtime configuration of the credential core. TTLs and
// peppers are policy parameters, never hardcoded in the flows.
type Config struct {
	AppEnv      string
	DatabaseURL string
	ListenAddr  string

	JWTSecret    string
	JWTAccessTTL time.Duration

	RefreshTTL         time.Duration
	RefreshTokenPepper string

	ResetCodeTTL    time.Duration
	ResetCodePepper string

	// SMTP settings are optional; when SMTPHost is empty the server
	// falls back to the console mailer.
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	MailFrom    string
	MailTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.ListenAddr = strings.TrimSpace(getEnv("LISTEN_ADDR", ":8080"))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.RefreshTokenPepper = strings.TrimSpace(getEnv("REFRESH_TOKEN_PEPPER", defaultRefreshPepper))
	cfg.ResetCodePepper = strings.TrimSpace(getEnv("RESET_CODE_PEPPER", defaultResetCodePepper))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.RefreshTTL, err = parseDurationEnv("REFRESH_TTL", defaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	cfg.ResetCodeTTL, err = parseDurationEnv("RESET_CODE_TTL", defaultResetCodeTTL)
	if err != nil {
		return nil, err
	}

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTPPort = strings.TrimSpace(getEnv("SMTP_PORT", "587"))
	cfg.SMTPUser = strings.TrimSpace(os.Getenv("SMTP_USER"))
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.MailFrom = strings.TrimSpace(getEnv("MAIL_FROM", "no-reply@finledger.local"))

	cfg.MailTimeout, err = parseDurationEnv("MAIL_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.RefreshTTL <= 0 {
		return fmt.Errorf("REFRESH_TTL must be > 0")
	}
	if cfg.ResetCodeTTL <= 0 {
		return fmt.Errorf("RESET_CODE_TTL must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenPepper, defaultRefreshPepper) {
			return fmt.Errorf("in prod/release REFRESH_TOKEN_PEPPER must be set and not default")
		}
		if isEmptyOrDefault(cfg.ResetCodePepper, defaultResetCodePepper) {
			return fmt.Errorf("in prod/release RESET_CODE_PEPPER must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
