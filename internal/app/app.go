package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"cfsubmissions/internal/codeforces"
	"cfsubmissions/internal/config"
	"cfsubmissions/internal/errx"
	"cfsubmissions/internal/filter"
	"cfsubmissions/internal/output"
	"cfsubmissions/internal/source"
	"cfsubmissions/internal/workspace"
)

// App wires the pipeline: resolve arguments, bootstrap the output tree, list
// the history, filter, fetch and write. Everything runs sequentially.
type App struct {
	Catalog    *config.Catalog
	Codeforces codeforces.Client
	Extractor  source.Extractor
	Workspace  workspace.Manager
	Output     output.Printer
	Logger     *slog.Logger

	// PageSize is the user.status page size.
	PageSize int

	// Now is overridable in tests.
	Now func() time.Time
}

type RunOptions struct {
	Handle string

	// Verdicts and Languages are catalog codes; "all" selects everything.
	// Empty lists select the defaults (verdict "ac", all languages).
	Verdicts  []string
	Languages []string

	// OutputParent is the directory the output root is created in (default ".").
	OutputParent string
}

type Result struct {
	Handle    string
	OutputDir string

	Scanned int
	Written int

	// NoSource counts matching submissions whose page had no source code.
	NoSource int

	Elapsed time.Duration
}

func New(deps App) *App {
	a := deps
	if a.Logger == nil {
		a.Logger = slog.New(slog.DiscardHandler)
	}
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.PageSize <= 0 {
		a.PageSize = config.DefaultPageSize
	}
	return &a
}

// Run downloads every matching submission of opts.Handle into a fresh output
// root and prints a summary.
func (a *App) Run(ctx context.Context, opts RunOptions) (Result, error) {
	start := a.Now()

	f, err := filter.New(a.Catalog, opts.Verdicts, opts.Languages)
	if err != nil {
		return Result{}, err
	}
	if err := a.Codeforces.ValidateHandle(ctx, opts.Handle); err != nil {
		return Result{}, interrupted(ctx, err)
	}

	root, err := a.Workspace.CreateRoot(ctx, opts.OutputParent, opts.Handle)
	if err != nil {
		return Result{}, interrupted(ctx, fmt.Errorf("an error has occurred while creating the output directory: %w", err))
	}
	if err := a.Workspace.CreateVerdictDirs(ctx, root, f.VerdictDirs()); err != nil {
		return Result{}, interrupted(ctx, fmt.Errorf("an error has occurred while creating the output directory: %w", err))
	}

	log := a.Logger.With(slog.String("handle", opts.Handle))
	log.DebugContext(ctx, "output root created",
		slog.String("root", root),
		slog.String("verdicts", f.Verdicts.String()),
		slog.String("languages", f.Languages.String()),
	)

	subs, err := a.listAll(ctx, log, opts.Handle)
	if err != nil {
		return Result{}, interrupted(ctx, err)
	}

	res := Result{Handle: opts.Handle, OutputDir: root}
	for _, s := range subs {
		res.Scanned++
		if err := a.Output.Progress(ctx, res.Scanned, len(subs)); err != nil {
			return res, err
		}

		if reason := f.Check(s); reason != filter.Included {
			log.DebugContext(ctx, "submission skipped",
				slog.Int64("id", s.ID),
				slog.String("reason", string(reason)),
			)
			continue
		}

		written, err := a.save(ctx, log, root, s)
		if err != nil {
			return res, interrupted(ctx, err)
		}
		if written {
			res.Written++
		} else {
			res.NoSource++
		}
	}

	res.Elapsed = a.Now().Sub(start)

	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	if err := a.Output.Summary(ctx, output.Summary{
		Handle:    res.Handle,
		OutputDir: abs,
		Scanned:   res.Scanned,
		Written:   res.Written,
		Elapsed:   res.Elapsed,
	}); err != nil {
		return res, err
	}
	return res, nil
}

func (a *App) listAll(ctx context.Context, log *slog.Logger, handle string) ([]codeforces.Submission, error) {
	p := codeforces.NewPager(a.Codeforces, handle, a.PageSize)
	var all []codeforces.Submission
	for {
		from := p.Offset()
		page, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		log.DebugContext(ctx, "submissions page fetched",
			slog.Int("from", from),
			slog.Int("count", a.PageSize),
			slog.Int("size", len(page)),
		)
		if len(page) == 0 {
			return all, nil
		}
		all = append(all, page...)
	}
}

// save fetches one submission's source and writes it. It reports false when
// the page carries no source code; that submission is skipped.
func (a *App) save(ctx context.Context, log *slog.Logger, root string, s codeforces.Submission) (bool, error) {
	page, err := a.Codeforces.FetchSubmissionPage(ctx, s.ContestID, s.ID)
	if err != nil {
		return false, err
	}

	code, ok := a.Extractor.Extract(page)
	if !ok {
		log.DebugContext(ctx, "submission skipped",
			slog.Int64("id", s.ID),
			slog.String("reason", "no source on page"),
		)
		return false, nil
	}

	if _, known := a.Catalog.LanguageCode(s.ProgrammingLanguage); !known {
		log.DebugContext(ctx, "language not in catalog, using fallback extension",
			slog.Int64("id", s.ID),
			slog.String("language", s.ProgrammingLanguage),
		)
	}

	path := workspace.OutputPath(
		root,
		config.VerdictDir(s.Verdict),
		workspace.ProblemSlug(s.ContestID, s.Problem.Index, s.Problem.Name),
		s.ID,
		a.Catalog.Extension(s.ProgrammingLanguage),
	)
	if err := a.Workspace.WriteSource(ctx, path, code); err != nil {
		return false, fmt.Errorf("an error has occurred while writing the source code to the file: %w", err)
	}
	log.DebugContext(ctx, "submission written", slog.Int64("id", s.ID), slog.String("path", path))
	return true, nil
}

// interrupted replaces err with errx.ErrInterrupted when ctx was cancelled,
// so a signal is reported as such rather than as a failed request.
func interrupted(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return errx.ErrInterrupted
	}
	return err
}
