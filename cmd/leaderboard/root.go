package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/projectconfig"
	"github.com/spboyer/leaderboard/internal/ranking"
	"github.com/spboyer/leaderboard/internal/source"
	"github.com/spboyer/leaderboard/internal/spinner"
	"github.com/spf13/cobra"
)

var version = "dev"

// app carries state shared by every subcommand: the persistent flags and
// the project configuration loaded before any subcommand runs.
type app struct {
	cfg         *projectconfig.ProjectConfig
	projectDir  string
	blobAccount string
	noColor     bool
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: projectconfig.New()}

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard - analytics for LLM benchmark results",
		Long: `Leaderboard turns a benchmark-results document into rankings, cost
shares and leaderboards.

Results can be read from a local file, stdin ("-"), gzip or zstd compressed
files, or Azure Blob Storage (azblob://container/blob).`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.projectDir, "project-dir", ".", "Directory to start the "+projectconfig.FileName+" search from")
	cmd.PersistentFlags().StringVar(&a.blobAccount, "blob-account", "", "Azure Blob Storage account URL for azblob:// locations")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		cfg, err := projectconfig.Load(a.projectDir)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}

	// Add subcommands
	cmd.AddCommand(newShowCommand(a))
	cmd.AddCommand(newRankCommand(a))
	cmd.AddCommand(newExportCommand(a))
	cmd.AddCommand(newCheckCommand(a))
	cmd.AddCommand(newServeCommand(a))

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}

// loader builds a source loader reading "-" from the command's stdin.
func (a *app) loader(cmd *cobra.Command) *source.Loader {
	account := a.blobAccount
	if account == "" {
		account = a.cfg.Blob.AccountURL
	}
	return source.NewLoader(source.Options{
		BlobAccountURL: account,
		Stdin:          cmd.InOrStdin(),
	})
}

// location resolves the document location from the positional args,
// falling back to the configured results path. A blob name without a
// container is placed in the configured container.
func (a *app) location(args []string) string {
	loc := a.cfg.Results.Path
	if len(args) > 0 {
		loc = args[0]
	}
	if rest, ok := strings.CutPrefix(loc, source.BlobScheme); ok && !strings.Contains(rest, "/") && a.cfg.Blob.Container != "" {
		loc = source.BlobScheme + a.cfg.Blob.Container + "/" + rest
	}
	return loc
}

// readDocument returns the raw bytes of the selected document.
func (a *app) readDocument(cmd *cobra.Command, args []string) (string, []byte, error) {
	loc := a.location(args)
	stop := a.progress(cmd, loc)
	data, err := a.loader(cmd).Load(cmd.Context(), loc)
	stop()
	if err != nil {
		return loc, nil, fmt.Errorf("loading results: %w", err)
	}
	return loc, data, nil
}

// dashboard loads and derives the dashboard of the selected document.
func (a *app) dashboard(cmd *cobra.Command, args []string) (*dashboard.Dashboard, error) {
	loc := a.location(args)
	stop := a.progress(cmd, loc)
	res, err := dashboard.Load(cmd.Context(), a.loader(cmd), loc)
	stop()
	if err != nil {
		return nil, err
	}
	d := dashboard.Build(res, a.cfg.Display.Limit)
	d.Source = loc
	slog.Debug("loaded results", "source", loc, "models", len(d.Models))
	return d, nil
}

// progress shows a spinner on a terminal stderr while a blob downloads.
func (a *app) progress(cmd *cobra.Command, loc string) (stop func()) {
	w := cmd.ErrOrStderr()
	remote := strings.HasPrefix(loc, source.BlobScheme)
	return spinner.StartIf(remote && isTerminal(w), w, "Downloading "+loc)
}

// sortFlags registers --sort and --order, defaulting to the configured
// display sort.
type sortFlags struct {
	key   string
	order string
}

func (f *sortFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.key, "sort", "", "Sort key: accuracy | latency | cost | value (default from config, accuracy)")
	cmd.Flags().StringVar(&f.order, "order", "", "Sort order: asc | desc (default from config, desc)")
}

func (f *sortFlags) state(cfg *projectconfig.ProjectConfig) (ranking.SortState, error) {
	key, order := f.key, f.order
	if key == "" {
		key = cfg.Display.Sort
	}
	if order == "" {
		order = cfg.Display.Order
	}
	k, err := ranking.ParseSortKey(key)
	if err != nil {
		return ranking.SortState{}, err
	}
	d, err := ranking.ParseDirection(order)
	if err != nil {
		return ranking.SortState{}, err
	}
	return ranking.SortState{Key: k, Direction: d}, nil
}
