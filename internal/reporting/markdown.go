package reporting

import (
	"fmt"
	"strings"

	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/display"
	"github.com/spboyer/leaderboard/internal/models"
	"github.com/spboyer/leaderboard/internal/ranking"
)

// Markdown renders the dashboard as a GitHub-flavored Markdown document.
// The detailed results table is ordered by sel.
func Markdown(d *dashboard.Dashboard, sel ranking.SortState) string {
	var b strings.Builder

	s := d.Summary
	b.WriteString("# Benchmark Results\n\n")
	fmt.Fprintf(&b, "Run: %s | Status: %s\n\n", cell(display.Timestamp(s.Timestamp, s.TimestampRaw)), display.Status(s.Completed))

	b.WriteString("## Execution Summary\n\n")
	table(&b, []string{"Metric", "Value"}, [][]string{
		{"Total evaluations", display.Count(s.TotalEvaluations)},
		{"Total cost", display.Cost(s.TotalCost)},
		{"Execution time", display.Minutes(s.TotalTimeMinutes)},
		{"Avg cost per eval", display.Cost(s.AvgCostPerEval)},
	})

	b.WriteString("## Performance Rankings\n\n")
	leaderboard(&b, d.Leaderboards.Performance, []string{"Accuracy", "Cost"}, func(e models.ModelEntry) []string {
		return []string{display.Accuracy(e.Metric.AvgAccuracy), display.Cost(e.Metric.TotalCost)}
	})
	fmt.Fprintf(&b, "Best performer: **%s**\n\n", cell(leaderName(d.Leaderboards.BestPerformer)))

	b.WriteString("## Cost Efficiency\n\n")
	leaderboard(&b, d.Leaderboards.CostEfficiency, []string{"Cost", "Value Score"}, func(e models.ModelEntry) []string {
		return []string{display.Cost(e.Metric.TotalCost), display.ValueScore(e.Metric.ValueScore)}
	})
	fmt.Fprintf(&b, "Cost leader: **%s**\n\n", cell(leaderName(d.Leaderboards.CostLeader)))

	fmt.Fprintf(&b, "## Detailed Results (%s)\n\n", sel)
	rows := ranking.Rows(d.Ranked(sel, 0))
	if len(rows) == 0 {
		b.WriteString("_No models evaluated._\n\n")
	} else {
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []string{r.Name, r.Accuracy, r.Latency, r.Cost, r.ValueScore, r.SuccessRate})
		}
		table(&b, []string{"Model", "Accuracy", "Latency", "Cost", "Value Score", "Success Rate"}, cells)
	}

	b.WriteString("## Cost Breakdown\n\n")
	if len(d.CostShares) == 0 {
		b.WriteString("_No cost data._\n\n")
	} else {
		cells := make([][]string, 0, len(d.CostShares))
		for _, cs := range d.CostShares {
			cells = append(cells, []string{display.ShortName(cs.Model), display.Cost(cs.Cost), cs.Display})
		}
		table(&b, []string{"Model", "Cost", "Share"}, cells)
	}

	b.WriteString("## Efficiency Metrics\n\n")
	table(&b, []string{"Metric", "Value"}, [][]string{
		{"Cost/Minute", display.Cost(s.CostPerMinute)},
		{"Total Models", display.Count(d.Fleet.Models)},
		{"Success Rate", display.SuccessRate(d.Fleet.MeanSuccessRate)},
		{"Mean Accuracy", display.Accuracy(d.Fleet.MeanAccuracy)},
		{"Mean Latency", display.Latency(d.Fleet.MeanLatency)},
	})

	return b.String()
}

func leaderboard(b *strings.Builder, view models.RankingView, headers []string, values func(models.ModelEntry) []string) {
	if len(view) == 0 {
		b.WriteString("_No rankings available._\n\n")
		return
	}
	cells := make([][]string, 0, len(view))
	for i, e := range view {
		cells = append(cells, append([]string{fmt.Sprint(i + 1), display.ShortName(e.ID)}, values(e)...))
	}
	table(b, append([]string{"#", "Model"}, headers...), cells)
}

func table(b *strings.Builder, headers []string, rows [][]string) {
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, r := range rows {
		escaped := make([]string, len(r))
		for i, c := range r {
			escaped[i] = cell(c)
		}
		b.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
	}
	b.WriteString("\n")
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ", "*", `\*`, "_", `\_`).Replace(s)
}
