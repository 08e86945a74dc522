// Package reporting renders a run dashboard as text, Markdown, HTML, JSON
// or CSV.
package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/ranking"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format is an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatHTML, FormatJSON, FormatCSV:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w %q: must be text, markdown, html, json or csv", ErrUnsupportedFormat, s)
}

// FormatFromPath infers a format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, true
	case ".html", ".htm":
		return FormatHTML, true
	case ".json":
		return FormatJSON, true
	case ".csv":
		return FormatCSV, true
	case ".txt":
		return FormatText, true
	}
	return "", false
}

// Export is the JSON export document.
type Export struct {
	*dashboard.Dashboard
	Sort   ranking.SortState `json:"sort"`
	Ranked []ranking.Row     `json:"ranked"`
}

// Write renders d in format f to w. sel orders the detailed results.
func Write(w io.Writer, d *dashboard.Dashboard, sel ranking.SortState, f Format) error {
	switch f {
	case FormatText:
		_, err := io.WriteString(w, FormatSummaryReport(d))
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(d, sel))
		return err
	case FormatHTML:
		return writeHTML(w, d, sel)
	case FormatJSON:
		return writeJSON(w, d, sel)
	case FormatCSV:
		return writeCSV(w, d, sel)
	}
	return fmt.Errorf("%w %q", ErrUnsupportedFormat, f)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { background: #000; color: #4ade80; font-family: ui-monospace, monospace; margin: 2rem; }
h1, h2 { color: #22d3ee; }
table { border-collapse: collapse; margin-bottom: 1rem; }
th, td { border: 1px solid #374151; padding: 0.3rem 0.8rem; text-align: left; }
th { background: #1f2937; color: #9ca3af; }
</style>
</head>
<body>
%s</body>
</html>
`

func writeHTML(w io.Writer, d *dashboard.Dashboard, sel ranking.SortState) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(d, sel)), &body); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	title := "Benchmark Results"
	if d.Source != "" {
		title += " - " + d.Source
	}
	_, err := fmt.Fprintf(w, htmlTemplate, html.EscapeString(title), body.String())
	return err
}

func writeJSON(w io.Writer, d *dashboard.Dashboard, sel ranking.SortState) error {
	data, err := json.MarshalIndent(Export{
		Dashboard: d,
		Sort:      sel,
		Ranked:    ranking.Rows(d.Ranked(sel, 0)),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// csvHeader names the columns of the CSV export.
var csvHeader = []string{"rank", "model", "avg_accuracy", "avg_latency", "total_cost", "value_score", "success_rate", "cost_share_pct"}

func writeCSV(w io.Writer, d *dashboard.Dashboard, sel ranking.SortState) error {
	shares := make(map[string]float64, len(d.CostShares))
	for _, cs := range d.CostShares {
		shares[cs.Model] = cs.Percentage
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, e := range d.Ranked(sel, 0) {
		record := []string{
			strconv.Itoa(i + 1),
			e.ID,
			number(e.Metric.AvgAccuracy),
			number(e.Metric.AvgLatency),
			number(e.Metric.TotalCost),
			number(e.Metric.ValueScore),
			number(e.Metric.SuccessRate),
			number(shares[e.ID]),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
