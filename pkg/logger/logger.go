package logger

import (
	"log/slog"
	"os"
	"strings"
)

// InitLogger installs the process-wide JSON logger. LOG_LEVEL overrides
// the default info level.
func InitLogger() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(&RequestIDHandler{Handler: handler}))
}
