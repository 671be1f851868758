package config

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger creates the logger a binary passes down to its packages. The
// level comes from SANTA_LOG_LEVEL and defaults to info.
func NewLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(GetEnv(EnvLogLevel, "info"))
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", GetEnv(EnvLogLevel, ""))
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
