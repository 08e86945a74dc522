package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/display"
	"github.com/spboyer/leaderboard/internal/models"
	"github.com/spboyer/leaderboard/internal/reporting"
	"github.com/spf13/cobra"
)

const (
	nameColumnWidth = 24
	shareBarWidth   = 20
)

func newShowCommand(a *app) *cobra.Command {
	var interpret bool

	cmd := &cobra.Command{
		Use:   "show [results-file]",
		Short: "Show the benchmark dashboard",
		Long: `Show the dashboard of a benchmark run: execution summary, performance and
cost-efficiency leaderboards, per-model metrics, cost breakdown and
efficiency metrics.

With no argument, the results path from ` + "`.leaderboard.yaml`" + ` is used
(default benchmark-results.json).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dashboard(cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printDashboard(w, a.stylesFor(w), d)
			if interpret {
				fmt.Fprintln(w)                                  //nolint:errcheck
				fmt.Fprint(w, reporting.FormatSummaryReport(d)) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&interpret, "interpret", false, "Append a plain-language interpretation of the results")
	return cmd
}

func printDashboard(w io.Writer, st styles, d *dashboard.Dashboard) {
	s := d.Summary
	status := st.good.Sprint(display.Status(s.Completed))
	if !s.Completed {
		status = st.warn.Sprint(display.Status(s.Completed))
	}
	fmt.Fprintf(w, "%s  [%s]  %s\n\n", st.heading.Sprint("BENCHMARK RESULTS"), status, display.Timestamp(s.Timestamp, s.TimestampRaw)) //nolint:errcheck

	section(w, st, "EXECUTION SUMMARY")
	renderTable(w, st, []string{"Metric", "Value"}, [][]string{
		{"Total Evaluations", display.Count(s.TotalEvaluations)},
		{"Total Cost", display.Cost(s.TotalCost)},
		{"Execution Time", display.Minutes(s.TotalTimeMinutes)},
		{"Avg Cost/Eval", display.Cost(s.AvgCostPerEval)},
	}, nil)
	fmt.Fprintln(w) //nolint:errcheck

	section(w, st, "PERFORMANCE LEADERBOARD")
	printLeaderboard(w, st, d.Leaderboards.Performance, []string{"Accuracy", "Cost"}, func(e models.ModelEntry) []string {
		return []string{display.Accuracy(e.Metric.AvgAccuracy), display.Cost(e.Metric.TotalCost)}
	})
	fmt.Fprintf(w, "  Best performer: %s\n\n", st.leader.Sprint(leader(d.Leaderboards.BestPerformer))) //nolint:errcheck

	section(w, st, "COST EFFICIENCY")
	printLeaderboard(w, st, d.Leaderboards.CostEfficiency, []string{"Cost", "Value Score"}, func(e models.ModelEntry) []string {
		return []string{display.Cost(e.Metric.TotalCost), display.ValueScore(e.Metric.ValueScore)}
	})
	fmt.Fprintf(w, "  Cost leader: %s\n\n", st.leader.Sprint(leader(d.Leaderboards.CostLeader))) //nolint:errcheck

	section(w, st, "MODEL METRICS")
	if len(d.Models) == 0 {
		fmt.Fprintln(w, st.muted.Sprint("  No models evaluated.")) //nolint:errcheck
	} else {
		rows := make([][]string, 0, len(d.Models))
		for _, m := range d.Models {
			rows = append(rows, []string{
				truncateName(m.ID, nameColumnWidth),
				display.Accuracy(m.Metric.AvgAccuracy),
				display.Latency(m.Metric.AvgLatency),
				display.Cost(m.Metric.TotalCost),
				display.ValueScore(m.Metric.ValueScore),
				display.SuccessRate(m.Metric.SuccessRate),
			})
		}
		renderTable(w, st, []string{"Model", "Accuracy", "Latency", "Cost", "Value", "Success"}, rows, nil)
	}
	fmt.Fprintln(w) //nolint:errcheck

	section(w, st, "COST BREAKDOWN")
	if len(d.CostShares) == 0 {
		fmt.Fprintln(w, st.muted.Sprint("  No cost data.")) //nolint:errcheck
	} else {
		rows := make([][]string, 0, len(d.CostShares))
		for _, cs := range d.CostShares {
			rows = append(rows, []string{
				truncateName(display.ShortName(cs.Model), nameColumnWidth),
				display.Cost(cs.Cost),
				cs.Display,
				bar(cs.Percentage, shareBarWidth),
			})
		}
		renderTable(w, st, []string{"Model", "Cost", "Share", ""}, rows, func(_, col int) *color.Color {
			if col == 3 {
				return st.good
			}
			return nil
		})
	}
	fmt.Fprintln(w) //nolint:errcheck

	section(w, st, "EFFICIENCY METRICS")
	renderTable(w, st, []string{"Metric", "Value"}, [][]string{
		{"Cost/Minute", display.Cost(s.CostPerMinute)},
		{"Total Models", display.Count(d.Fleet.Models)},
		{"Success Rate", display.SuccessRate(d.Fleet.MeanSuccessRate)},
		{"Mean Accuracy", display.Accuracy(d.Fleet.MeanAccuracy)},
		{"Accuracy StdDev", display.Accuracy(d.Fleet.StdDevAccuracy)},
		{"Mean Latency", display.Latency(d.Fleet.MeanLatency)},
	}, nil)
}

func printLeaderboard(w io.Writer, st styles, view models.RankingView, headers []string, values func(models.ModelEntry) []string) {
	if len(view) == 0 {
		fmt.Fprintln(w, st.muted.Sprint("  No rankings available.")) //nolint:errcheck
		return
	}
	rows := make([][]string, 0, len(view))
	for i, e := range view {
		rows = append(rows, append([]string{fmt.Sprintf("#%d", i+1), truncateName(display.ShortName(e.ID), nameColumnWidth)}, values(e)...))
	}
	renderTable(w, st, append([]string{"Rank", "Model"}, headers...), rows, func(row, _ int) *color.Color {
		if row == 0 {
			return st.leader
		}
		return nil
	})
}

func leader(e *models.ModelEntry) string {
	if e == nil {
		return "none"
	}
	return display.ShortName(e.ID)
}
