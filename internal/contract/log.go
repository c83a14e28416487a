package contract

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	SetupLogger(os.Stderr, false)
}

// SetupLogger installs the process-wide diagnostic logger. Verbose lowers the
// level to debug so per-file skips become visible.
func SetupLogger(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Logger returns the process-wide diagnostic logger.
func Logger() *slog.Logger {
	return logger.Load()
}
