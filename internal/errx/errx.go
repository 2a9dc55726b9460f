package errx

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage marks command-line mistakes: missing or unknown flags and
	// filter codes that are not in the catalog. The CLI prints usage for these.
	ErrUsage = errors.New("usage error")

	// ErrInvalidHandle is returned when the judge does not recognize a handle.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrInterrupted is reported when the run is cancelled by a signal.
	ErrInterrupted = errors.New("execution has been terminated")
)

// Usage returns a formatted error wrapped with ErrUsage.
func Usage(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrUsage)
}

// ExitCode maps an error returned by a command to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInterrupted):
		return 130
	case errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}
