package config

import (
	"log/slog"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LogConfig controls the process-wide structured logger.
type LogConfig struct {
	Level  string    `env:"LEVEL"  envDefault:"info"`
	Format LogFormat `env:"FORMAT" envDefault:"json"`
}

// Sanitize lowercases values and falls back to JSON for unknown formats.
func (c *LogConfig) Sanitize() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	switch LogFormat(strings.ToLower(strings.TrimSpace(string(c.Format)))) {
	case LogFormatText:
		c.Format = LogFormatText
	default:
		c.Format = LogFormatJSON
	}
}

// SlogLevel maps Level onto slog levels; unknown values mean info.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
