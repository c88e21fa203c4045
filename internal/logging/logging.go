package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	"pdnsweb/internal/config"
)

// New builds the process logger from the log section of the config.
// Unknown levels fall back to info rather than failing startup.
func New(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if strings.ToLower(cfg.Format) != "json" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out})
	}

	return logger.With().Timestamp().Logger().Level(level)
}
