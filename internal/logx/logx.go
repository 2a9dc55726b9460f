package logx

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// New returns a text logger writing to w. Every record carries a run_id so
// the lines of one run can be told apart in a shared log.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(
		slog.NewTextHandler(
			w,
			&slog.HandlerOptions{
				AddSource: false,
				Level:     level,
			},
		),
	).With(slog.String("run_id", uuid.NewString()))
}
