package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const kProgressBarWidth = 20

// Summary is what a finished run reports.
type Summary struct {
	Handle string

	// OutputDir is the absolute path of the output root.
	OutputDir string

	Scanned int
	Written int
	Elapsed time.Duration
}

// Printer renders user-facing output.
type Printer interface {
	// Progress redraws the progress bar in place. done counts scanned
	// submissions, not just the retained ones.
	Progress(ctx context.Context, done int, total int) error

	// Summary ends the progress line and prints the completion report.
	Summary(ctx context.Context, s Summary) error

	PrintError(ctx context.Context, err error) error
}

// StdPrinter is a simple stdout/stderr printer.
type StdPrinter struct {
	Out io.Writer
	Err io.Writer

	// inProgress is set while the cursor sits on an unfinished progress line.
	inProgress bool
}

func NewStdPrinter(out io.Writer, err io.Writer) *StdPrinter {
	return &StdPrinter{Out: out, Err: err}
}

func (p *StdPrinter) Progress(ctx context.Context, done int, total int) error {
	p.inProgress = true
	_, err := fmt.Fprintf(p.Out, "\r%s", ProgressBar(done, total))
	return err
}

func (p *StdPrinter) Summary(ctx context.Context, s Summary) error {
	if err := p.EndLine(); err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("Extracting (%s) submissions has been completed successfully", s.Handle),
		fmt.Sprintf("Submissions written: %d of %d scanned", s.Written, s.Scanned),
		fmt.Sprintf("Submissions can be found on %s", s.OutputDir),
		fmt.Sprintf("Elapsed time: %.2f seconds", s.Elapsed.Seconds()),
	}
	_, err := fmt.Fprintln(p.Out, strings.Join(lines, "\n"))
	return err
}

func (p *StdPrinter) PrintError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if eerr := p.EndLine(); eerr != nil {
		return eerr
	}
	_, werr := fmt.Fprintf(p.Err, "error: %v\n", err)
	return werr
}

// EndLine terminates an unfinished progress line so later output starts on a
// fresh line. It is a no-op otherwise.
func (p *StdPrinter) EndLine() error {
	if !p.inProgress {
		return nil
	}
	p.inProgress = false
	_, err := fmt.Fprintln(p.Out)
	return err
}

// ProgressBar renders "[=====               ] 25.00%". An empty history
// counts as complete.
func ProgressBar(done int, total int) string {
	pct := 100.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / (100 / kProgressBarWidth))
	return fmt.Sprintf("[%-*s] %.2f%%", kProgressBarWidth, strings.Repeat("=", filled), pct)
}
