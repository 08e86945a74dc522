package reporting

import (
	"fmt"
	"strings"

	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/display"
	"github.com/spboyer/leaderboard/internal/models"
)

// InterpretAccuracy returns a plain-language label for an accuracy (0–1).
func InterpretAccuracy(accuracy float64) string {
	pct := accuracy * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretSuccessRate returns a human-readable explanation of a success
// rate (0–1).
func InterpretSuccessRate(rate float64) string {
	pct := display.SuccessRate(rate)
	switch {
	case rate >= 1:
		return fmt.Sprintf("Every evaluation completed (%s)", pct)
	case rate >= 0.8:
		return fmt.Sprintf("Most evaluations completed (%s)", pct)
	case rate >= 0.5:
		return fmt.Sprintf("About half the evaluations completed (%s)", pct)
	default:
		return fmt.Sprintf("Few evaluations completed (%s)", pct)
	}
}

// leaderName renders a leader, or "none" for an empty ranking.
func leaderName(e *models.ModelEntry) string {
	if e == nil {
		return "none"
	}
	return display.ShortName(e.ID)
}

// FormatSummaryReport produces a plain-language report of a run.
func FormatSummaryReport(d *dashboard.Dashboard) string {
	var b strings.Builder

	s := d.Summary
	b.WriteString("=== Interpretation ===\n\n")
	fmt.Fprintf(&b, "Status:        %s (%s)\n", display.Status(s.Completed), display.Timestamp(s.Timestamp, s.TimestampRaw))
	fmt.Fprintf(&b, "Evaluations:   %s in %s costing %s\n",
		display.Count(s.TotalEvaluations), display.Minutes(s.TotalTimeMinutes), display.Cost(s.TotalCost))

	if len(d.Models) == 0 {
		b.WriteString("\nNo models were evaluated.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Best performer: %s\n", leaderName(d.Leaderboards.BestPerformer))
	fmt.Fprintf(&b, "Cost leader:    %s\n", leaderName(d.Leaderboards.CostLeader))
	fmt.Fprintf(&b, "Mean accuracy:  %s - %s\n", display.Accuracy(d.Fleet.MeanAccuracy), InterpretAccuracy(d.Fleet.MeanAccuracy))

	b.WriteString("\nPer-Model Interpretation:\n")
	for _, m := range d.Models {
		fmt.Fprintf(&b, "  %s: %s - %s\n", m.ID, display.Accuracy(m.Metric.AvgAccuracy), InterpretAccuracy(m.Metric.AvgAccuracy))
		fmt.Fprintf(&b, "    %s\n", InterpretSuccessRate(m.Metric.SuccessRate))
	}

	return b.String()
}
