package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleDashboard(), ranking.DefaultSort)

	for _, want := range []string{
		"# Benchmark Results\n",
		"Run: 2026-02-18 10:00:00 UTC | Status: COMPLETED",
		"## Execution Summary",
		"| Total evaluations | 1,200 |",
		"| Avg cost per eval | $0.0002 |",
		"## Performance Rankings",
		"| 1 | x | 91.0% | $0.0500 |",
		"Best performer: **x**",
		"## Cost Efficiency",
		"| 1 | x | $0.0500 | 18.20 |",
		"Cost leader: **x**",
		"## Detailed Results (accuracy desc)",
		"| x | 91.0% | 120ms | $0.0500 | 18.20 | 98% |",
		"## Cost Breakdown",
		"| x | $0.0500 | 20.0% |",
		"| y | $0.2000 | 80.0% |",
		"## Efficiency Metrics",
		"| Cost/Minute | $0.1000 |",
		"| Total Models | 2 |",
	} {
		assert.Contains(t, md, want)
	}
}

func TestMarkdown_DetailedOrderFollowsSelection(t *testing.T) {
	sel := ranking.SortState{Key: ranking.SortByLatency, Direction: ranking.Ascending}
	md := Markdown(sampleDashboard(), sel)

	detailed := md[strings.Index(md, "## Detailed Results (latency asc)"):]
	assert.Less(t, strings.Index(detailed, "| y |"), strings.Index(detailed, "| x |"))
}

func TestMarkdown_Empty(t *testing.T) {
	md := Markdown(emptyDashboard(), ranking.DefaultSort)

	assert.Contains(t, md, "Status: INCOMPLETE")
	assert.Contains(t, md, "_No rankings available._")
	assert.Contains(t, md, "Best performer: **none**")
	assert.Contains(t, md, "_No models evaluated._")
	assert.Contains(t, md, "_No cost data._")
}

func TestCell(t *testing.T) {
	assert.Equal(t, `a\|b`, cell("a|b"))
	assert.Equal(t, `gpt\_4 \*new\*`, cell("gpt_4 *new*"))
	assert.Equal(t, "two lines", cell("two\nlines"))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"HTML", FormatHTML},
		{" json ", FormatJSON},
		{"csv", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"out.md", FormatMarkdown, true},
		{"out.HTML", FormatHTML, true},
		{"dir/out.json", FormatJSON, true},
		{"out.csv", FormatCSV, true},
		{"out.txt", FormatText, true},
		{"out", "", false},
		{"out.pdf", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrite_HTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDashboard(), ranking.DefaultSort, FormatHTML))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Benchmark Results - nightly.json</title>")
	assert.Contains(t, out, "<h1>Benchmark Results</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<strong>x</strong>")
}

func TestWrite_HTMLEscapesSource(t *testing.T) {
	d := sampleDashboard()
	d.Source = "<script>.json"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d, ranking.DefaultSort, FormatHTML))
	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;.json")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	sel := ranking.SortState{Key: ranking.SortByCost, Direction: ranking.Descending}
	require.NoError(t, Write(&buf, sampleDashboard(), sel, FormatJSON))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{"source", "execution_summary", "model_analysis", "cost_shares", "leaderboards", "fleet", "charts", "sort", "ranked"} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "Results")

	ranked := doc["ranked"].([]any)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a/y", ranked[0].(map[string]any)["model"])
	assert.Equal(t, map[string]any{"key": "cost", "direction": "desc"}, doc["sort"])
}

func TestWrite_JSONHugeValues(t *testing.T) {
	res, err := dashboard.Parse([]byte(`{"model_analysis": {
	  "a/x": {"avg_accuracy": 1, "avg_latency": 1e200, "total_cost": 1e308, "value_score": 1, "success_rate": 1},
	  "a/y": {"avg_accuracy": 0, "avg_latency": 0, "total_cost": 1e308, "value_score": 1, "success_rate": 1}
	}}`))
	require.NoError(t, err)
	d := dashboard.Build(res, ranking.DefaultLeaderboardSize)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d, ranking.DefaultSort, FormatJSON))

	var doc struct {
		Fleet struct {
			StdDevLatency float64 `json:"std_dev_latency"`
			ModelCost     float64 `json:"model_cost"`
		} `json:"fleet"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.InDelta(t, 5e199, doc.Fleet.StdDevLatency, 1e186)
	assert.Equal(t, math.MaxFloat64, doc.Fleet.ModelCost)
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDashboard(), ranking.DefaultSort, FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"1", "a/x", "0.91", "120", "0.05", "18.2", "0.98"}, records[1][:7])
	assert.Equal(t, []string{"2", "a/y", "0.8", "90", "0.2", "4", "1"}, records[2][:7])
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDashboard(), ranking.DefaultSort, FormatText))
	assert.Equal(t, FormatSummaryReport(sampleDashboard()), buf.String())
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleDashboard(), ranking.DefaultSort, Format("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
