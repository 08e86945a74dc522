package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spboyer/leaderboard/internal/reporting"
	"github.com/spf13/cobra"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		sort   sortFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [results-file]",
		Short: "Export the dashboard as text, Markdown, HTML, JSON or CSV",
		Long: `Export the dashboard of a run.

The format defaults to the extension of --output (.md, .html, .json, .csv,
.txt) and to Markdown when writing to stdout. --sort and --order select the
order of the detailed results.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}
			sel, err := sort.state(a.cfg)
			if err != nil {
				return err
			}

			d, err := a.dashboard(cmd, args)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return reporting.Write(cmd.OutOrStdout(), d, sel, f)
			}
			if err := writeExportFile(output, func(w io.Writer) error {
				return reporting.Write(w, d, sel, f)
			}); err != nil {
				return err
			}
			slog.Debug("exported results", "format", f, "path", output)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", f, output) //nolint:errcheck
			return nil
		},
	}

	sort.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text | markdown | html | json | csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func exportFormat(format, output string) (reporting.Format, error) {
	if format != "" {
		return reporting.ParseFormat(format)
	}
	if f, ok := reporting.FormatFromPath(output); ok {
		return f, nil
	}
	return reporting.FormatMarkdown, nil
}

func writeExportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
