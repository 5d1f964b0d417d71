package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/placementhub/placement-engine/config"
)

// InitLogger installs a JSON info logger used until configuration is loaded.
func InitLogger() *slog.Logger {
	return ConfigureLogger(os.Stdout, config.LogConfig{Format: config.LogFormatJSON, Level: "info"})
}

// ConfigureLogger builds the logger described by cfg and makes it the default.
func ConfigureLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.Format == config.LogFormatText {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env file: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// ValidateServiceConfig reports every startup problem at once: unknown or
// empty service modes, mock auth outside dev, and a missing JWT signing key.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}

	var problems []error
	if services, err := cfg.GetEnabledServices(); err != nil {
		problems = append(problems, fmt.Errorf("invalid service configuration: %w", err))
	} else if len(services) == 0 {
		problems = append(problems, errors.New("no services enabled"))
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		if !cfg.IsDev {
			problems = append(problems, errors.New("AUTH_MODE=mock requires DEV=true"))
		}
	case config.AuthModeJWT:
		if cfg.Auth.JWT.SigningKey == "" {
			problems = append(problems, errors.New("AUTH_JWT_SIGNING_KEY is required when AUTH_MODE=jwt"))
		}
	}
	return errors.Join(problems...)
}

// GetEnabledServices returns the sorted names of enabled services, or an
// empty list when the configuration does not parse.
func GetEnabledServices(cfg *config.AppConfig) []string {
	if cfg == nil {
		return []string{}
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		return []string{}
	}
	enabled := make([]string, 0, len(services))
	for svc, on := range services {
		if on {
			enabled = append(enabled, string(svc))
		}
	}
	slices.Sort(enabled)
	return enabled
}
