package logger

import (
	"log/slog"
	"os"
)

// New returns the JSON structured logger every component receives at
// construction. There is no package-level default; loggers are injected.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
