// Package logging configures the zerolog logger used throughout Canvass.
// Because the TUI owns the terminal, interactive sessions log to a file;
// one-shot commands log to stderr through a console writer.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. When filePath is non-empty,
// output goes to that file (created with its parent directory); otherwise
// output goes to stderr. Returns a closer for the log file, which may be nil.
func Setup(level, filePath string, interactive bool) (io.Closer, error) {
	zerolog.SetGlobalLevel(parseLevel(level))

	var out io.Writer = os.Stderr
	var closer io.Closer

	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = f
	} else if interactive {
		// No file and an interactive TUI: discard rather than corrupt the screen.
		out = io.Discard
	}

	writer := zerolog.ConsoleWriter{Out: out, NoColor: filePath != ""}
	logger := zerolog.New(writer).With().Timestamp().Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	return closer, nil
}

// parseLevel maps a config level string to a zerolog level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
