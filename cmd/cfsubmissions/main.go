package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"cfsubmissions/internal/app"
	"cfsubmissions/internal/codeforces"
	"cfsubmissions/internal/config"
	"cfsubmissions/internal/errx"
	"cfsubmissions/internal/logx"
	"cfsubmissions/internal/output"
	"cfsubmissions/internal/source"
	"cfsubmissions/internal/workspace"
)

const (
	kEnvBaseURL      = "CF_SUBMISSIONS_BASE_URL"
	kEnvSettingsPath = "CF_SUBMISSIONS_CONFIG_PATH"
)

func main() {
	os.Exit(realMain(os.Args))
}

func realMain(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pr := output.NewStdPrinter(os.Stdout, os.Stderr)

	err := newRootCommand(pr).Run(ctx, expandMultiValueFlags(args))
	if err == nil {
		return 0
	}
	if ctx.Err() != nil {
		err = errx.ErrInterrupted
	}

	if errors.Is(err, errx.ErrUsage) {
		_ = pr.EndLine()
		usage(os.Stderr)
	}
	_ = pr.PrintError(ctx, err)
	return errx.ExitCode(err)
}

// multiValueFlags take every value up to the next flag.
var multiValueFlags = map[string]bool{
	"-v": true, "--verdict": true,
	"-l": true, "--language": true,
}

// expandMultiValueFlags rewrites "-v ac wa" as "-v ac -v wa" so the flag
// parser sees one value per occurrence. A multi-value flag with no values is
// dropped and its default applies. Nothing after "--" is touched.
func expandMultiValueFlags(args []string) []string {
	if len(args) == 0 {
		return args
	}
	out := []string{args[0]}
	current := ""
	for i := 1; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return append(out, args[i:]...)
		case len(a) > 1 && strings.HasPrefix(a, "-"):
			current = ""
			name, _, hasValue := strings.Cut(a, "=")
			if multiValueFlags[name] {
				current = name
				if !hasValue {
					continue
				}
			}
			out = append(out, a)
		case current != "":
			out = append(out, current, a)
		default:
			out = append(out, a)
		}
	}
	return out
}

func newRootCommand(pr *output.StdPrinter) *cli.Command {
	return &cli.Command{
		Name:      "cf-submissions",
		Usage:     "Extract submissions of a Codeforces user",
		Writer:    pr.Out,
		ErrWriter: pr.Err,
		// Help is a plain flag so -h prints our usage and -v stays free for verdicts.
		HideHelp: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Codeforces handle whose submissions are extracted",
			},
			&cli.StringSliceFlag{
				Name:    "verdict",
				Aliases: []string{"v"},
				Usage:   "verdict codes to extract (default: ac)",
			},
			&cli.StringSliceFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "language codes to extract (default: all)",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Value: config.DefaultCatalogPath,
				Usage: "language/verdict catalog (JSON)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "directory the output root is created in",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "write debug logs to stderr",
			},
			&cli.BoolFlag{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "show usage",
			},
		},
		OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
			return fmt.Errorf("%v: %w", err, errx.ErrUsage)
		},
		ExitErrHandler: func(ctx context.Context, cmd *cli.Command, err error) {},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runExtract(ctx, cmd, pr)
		},
	}
}

func runExtract(ctx context.Context, cmd *cli.Command, pr *output.StdPrinter) error {
	if cmd.Bool("help") {
		usage(pr.Out)
		return nil
	}
	if cmd.NArg() > 0 {
		return errx.Usage("unrecognized arguments: %s", strings.Join(cmd.Args().Slice(), " "))
	}
	handle := strings.TrimSpace(cmd.String("user"))
	if handle == "" {
		return errx.Usage("the following arguments are required: -u/--user")
	}

	settingsPath := strings.TrimSpace(os.Getenv(kEnvSettingsPath))
	if settingsPath == "" {
		var err error
		settingsPath, err = config.DefaultSettingsPath()
		if err != nil {
			return fmt.Errorf("resolve settings path: %w", err)
		}
	}
	settings, err := config.NewFileStore(settingsPath).Load(ctx)
	if err != nil {
		return err
	}
	if baseURL := strings.TrimSpace(os.Getenv(kEnvBaseURL)); baseURL != "" {
		settings.BaseURL = baseURL
	}

	catalog, err := config.LoadCatalog(cmd.String("catalog"))
	if err != nil {
		return err
	}

	logger := logx.New(pr.Err, cmd.Bool("verbose"))

	cf := codeforces.NewHttpClient(codeforces.HttpClientOptions{
		BaseURL:   settings.BaseURL,
		UserAgent: settings.UserAgent,
		Retries:   settings.Retries,
		Logger:    logger,
	})

	a := app.New(app.App{
		Catalog:    catalog,
		Codeforces: cf,
		Extractor:  source.NewHTMLExtractor(),
		Workspace:  workspace.NewFSManager(),
		Output:     pr,
		Logger:     logger,
		PageSize:   settings.PageSize,
	})

	_, err = a.Run(ctx, app.RunOptions{
		Handle:       handle,
		Verdicts:     cmd.StringSlice("verdict"),
		Languages:    cmd.StringSlice("language"),
		OutputParent: cmd.String("output"),
	})
	return err
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "cf-submissions - extract submissions of a Codeforces user")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cf-submissions -u <handle> [-v <verdict>...] [-l <language>...]")
	fmt.Fprintln(w, "  cf-submissions -h | --help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -u, --user <handle>        Codeforces handle (required)")
	fmt.Fprintln(w, "  -v, --verdict <code>...    verdicts to extract [default: ac]")
	fmt.Fprintln(w, "  -l, --language <code>...   languages to extract [default: all]")
	fmt.Fprintln(w, "  -o, --output <dir>         directory to create the output root in [default: .]")
	fmt.Fprintln(w, "      --catalog <path>       language/verdict catalog [default: config.json]")
	fmt.Fprintln(w, "      --verbose              write debug logs to stderr")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Verdicts:")
	fmt.Fprintln(w, "  all ac rejected wa rte tle mle ce hacked failed partial pe ile sv crashed ipf skipped running pending")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Languages:")
	fmt.Fprintln(w, "  all, or any code listed in the catalog (e.g. c cpp17 java8 py3 pypy3 go rust kotlin)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  %s   settings file (base_url, page_size, retries, user_agent)\n", kEnvSettingsPath)
	fmt.Fprintf(w, "  %s      judge origin override\n", kEnvBaseURL)
}
