package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide slog handler. `debug` lowers the
// level to slog.LevelDebug, which also turns on per-request logging of
// the instrumented resty clients.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
