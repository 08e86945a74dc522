package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spboyer/leaderboard/internal/ranking"
	"github.com/spf13/cobra"
)

// rankReport is the JSON output of the rank command.
type rankReport struct {
	Source string            `json:"source"`
	Sort   ranking.SortState `json:"sort"`
	Rows   []ranking.Row     `json:"rows"`
}

func newRankCommand(a *app) *cobra.Command {
	var (
		sort   sortFlags
		toggle string
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "rank [results-file]",
		Short: "Rank models by a metric",
		Long: `Rank every model of a run by accuracy, latency, cost or value score.

Sorting is stable: models with equal values keep their order from the
results file in both directions. --toggle applies a column choice to the
given sort, the way clicking a column header does: the same key flips the
direction, a new key starts descending.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}
			if limit < 0 {
				return fmt.Errorf("invalid limit %d: must be zero (all) or positive", limit)
			}
			sel, err := sort.state(a.cfg)
			if err != nil {
				return err
			}
			if toggle != "" {
				key, err := ranking.ParseSortKey(toggle)
				if err != nil {
					return err
				}
				sel = sel.Toggle(key)
			}

			d, err := a.dashboard(cmd, args)
			if err != nil {
				return err
			}

			report := rankReport{
				Source: d.Source,
				Sort:   sel,
				Rows:   ranking.Rows(d.Ranked(sel, limit)),
			}
			w := cmd.OutOrStdout()
			if format == "json" {
				return printRankJSON(w, report)
			}
			printRankTable(w, a.stylesFor(w), report)
			return nil
		},
	}

	sort.register(cmd)
	cmd.Flags().StringVar(&toggle, "toggle", "", "Column chosen against the current sort: accuracy | latency | cost | value")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the first N models (0 shows all)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}

func printRankTable(w io.Writer, st styles, r rankReport) {
	section(w, st, fmt.Sprintf("RANKING BY %s (%s)", r.Sort.Key, r.Sort.Direction))
	if len(r.Rows) == 0 {
		fmt.Fprintln(w, st.muted.Sprint("  No models evaluated.")) //nolint:errcheck
		return
	}

	// The sorted column is highlighted.
	sorted := map[ranking.SortKey]int{
		ranking.SortByAccuracy: 2,
		ranking.SortByLatency:  3,
		ranking.SortByCost:     4,
		ranking.SortByValue:    5,
	}[r.Sort.Key]

	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			fmt.Sprintf("#%d", row.Rank),
			truncateName(row.Model, nameColumnWidth),
			row.Accuracy,
			row.Latency,
			row.Cost,
			row.ValueScore,
			row.SuccessRate,
		})
	}
	renderTable(w, st, []string{"Rank", "Model", "Accuracy", "Latency", "Cost", "Value", "Success"}, rows, func(_, col int) *color.Color {
		if col == sorted {
			return st.heading
		}
		return nil
	})
}

func printRankJSON(w io.Writer, r rankReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ranking: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
