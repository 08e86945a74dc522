package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spboyer/leaderboard/internal/validation"
	"github.com/spf13/cobra"
)

// checkReport is the JSON output of the check command.
type checkReport struct {
	Source   string   `json:"source"`
	OK       bool     `json:"ok"`
	Problems []string `json:"problems"`
}

func newCheckCommand(a *app) *cobra.Command {
	var (
		format string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check [results-file]",
		Short: "Check a results document against the results schema",
		Long: `Check a results document against the results schema.

Problems are warnings: every value the schema flags is replaced by a default
when the document is loaded, so other commands still work. The command fails
only when the document can not be read or parsed, or with --strict when
problems are found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be text or json", format)
			}

			loc, data, err := a.readDocument(cmd, args)
			if err != nil {
				return err
			}
			report, err := validation.CheckBytes(data)
			if err != nil {
				return fmt.Errorf("checking %s: %w", loc, err)
			}

			result := checkReport{Source: loc, OK: report.OK(), Problems: report.Problems()}
			if result.Problems == nil {
				result.Problems = []string{}
			}
			w := cmd.OutOrStdout()
			if format == "json" {
				if err := printCheckJSON(w, result); err != nil {
					return err
				}
			} else {
				printCheckText(w, a.stylesFor(w), result)
			}

			if strict && !result.OK {
				return &CheckFailureError{
					Message: fmt.Sprintf("%s: %d schema problem(s)", loc, len(result.Problems)),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text | json")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 1 when problems are found")
	return cmd
}

func printCheckText(w io.Writer, st styles, r checkReport) {
	if r.OK {
		fmt.Fprintf(w, "%s %s conforms to the results schema\n", st.good.Sprint("✓"), r.Source) //nolint:errcheck
		return
	}
	fmt.Fprintf(w, "%s %s: %d problem(s), defaults will be applied\n", st.warn.Sprint("⚠"), r.Source, len(r.Problems)) //nolint:errcheck
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  - %s\n", p) //nolint:errcheck
	}
}

func printCheckJSON(w io.Writer, r checkReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal check report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
