package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/spboyer/leaderboard/internal/projectconfig"
	"github.com/spboyer/leaderboard/internal/ranking"
	"github.com/spboyer/leaderboard/internal/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResults = `{
  "execution_summary": {
    "total_evaluations": 1200,
    "total_cost": 0.25,
    "total_time_minutes": 2.5,
    "avg_cost_per_eval": 0.0002,
    "cost_per_minute": 0.1,
    "timestamp": "2026-02-18T10:00:00Z",
    "completed": true
  },
  "model_analysis": {
    "openai/gpt-4o": {"avg_accuracy": 0.91, "avg_latency": 120, "total_cost": 0.05, "value_score": 18.2, "success_rate": 0.98},
    "meta/llama-3": {"avg_accuracy": 0.80, "avg_latency": 90, "total_cost": 0.20, "value_score": 4, "success_rate": 1}
  },
  "cost_breakdown": {"openai/gpt-4o": 0.05, "meta/llama-3": 0.20},
  "rankings": {
    "performance": [["openai/gpt-4o"], ["meta/llama-3"]],
    "cost_efficiency": [["openai/gpt-4o"], ["meta/llama-3"]]
  }
}`

type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, dir: t.TempDir()}
}

func (c *cli) write(name, content string) string {
	c.t.Helper()
	p := filepath.Join(c.dir, name)
	require.NoError(c.t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--project-dir", c.dir, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func rankModels(t *testing.T, out string) ([]string, ranking.SortState) {
	t.Helper()
	var report rankReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	ids := make([]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		ids = append(ids, r.Model)
	}
	return ids, report.Sort
}

// ---------------------------------------------------------------------------
// show
// ---------------------------------------------------------------------------

func TestShowCommand(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	out, err := c.run("", "show", path)
	require.NoError(t, err)

	for _, want := range []string{
		"BENCHMARK RESULTS",
		"[COMPLETED]",
		"2026-02-18 10:00:00 UTC",
		"EXECUTION SUMMARY",
		"1,200",
		"$0.2500",
		"2.5m",
		"$0.0002",
		"Best performer: gpt-4o",
		"Cost leader: gpt-4o",
		"91.0%",
		"98%",
		"120ms",
		"18.20",
		"20.0%",
		"80.0%",
		"EFFICIENCY METRICS",
		"$0.1000",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "expected no color escapes")
	assert.Less(t, strings.Index(out, "openai/gpt-4o"), strings.Index(out, "meta/llama-3"), "models keep source order")
}

func TestShowCommand_Interpret(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	out, err := c.run("", "show", "--interpret", path)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Interpretation ===")
	assert.Contains(t, out, "Excellent (>90%)")
}

func TestShowCommand_Stdin(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(sampleResults, "show", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Best performer: gpt-4o")
}

func TestShowCommand_Compressed(t *testing.T) {
	c := newCLI(t)
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	path := c.write("results.json.zst", string(enc.EncodeAll([]byte(sampleResults), nil)))
	require.NoError(t, enc.Close())

	out, err := c.run("", "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "91.0%")
}

func TestShowCommand_EmptyDocument(t *testing.T) {
	c := newCLI(t)
	path := c.write("empty.json", `{}`)

	out, err := c.run("", "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[INCOMPLETE]")
	assert.Contains(t, out, "No rankings available.")
	assert.Contains(t, out, "Best performer: none")
	assert.Contains(t, out, "Cost leader: none")
	assert.Contains(t, out, "No models evaluated.")
	assert.Contains(t, out, "No cost data.")
}

func TestShowCommand_InvalidNumericSinksInRanking(t *testing.T) {
	c := newCLI(t)
	path := c.write("bad.json", `{"model_analysis": {
		"a/x": {"avg_accuracy": "not-a-number"},
		"a/y": {"avg_accuracy": 0.5}
	}}`)

	out, err := c.run("", "rank", "--format", "json", path)
	require.NoError(t, err)
	ids, _ := rankModels(t, out)
	assert.Equal(t, []string{"a/y", "a/x"}, ids)
}

func TestShowCommand_Errors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "show", filepath.Join(c.dir, "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = c.run("", "show", c.write("broken.json", "{oops"))
	require.Error(t, err)

	_, err = c.run("", "show", "azblob://only-container")
	require.Error(t, err)
}

func TestShowCommand_DefaultPathFromConfig(t *testing.T) {
	c := newCLI(t)
	c.write("bench.json", sampleResults)
	c.write(".leaderboard.yaml", "results:\n  path: "+filepath.Join(c.dir, "bench.json")+"\n")

	out, err := c.run("", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Best performer: gpt-4o")
}

func TestShowCommand_NegativeConfigLimit(t *testing.T) {
	c := newCLI(t)
	path := c.write("bench.json", sampleResults)
	c.write(".leaderboard.yaml", "display:\n  limit: -1\n")

	_, err := c.run("", "show", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display.limit -1")
}

// ---------------------------------------------------------------------------
// rank
// ---------------------------------------------------------------------------

func TestRankCommand(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	tests := []struct {
		name string
		args []string
		ids  []string
		sort ranking.SortState
	}{
		{
			name: "default accuracy desc",
			ids:  []string{"openai/gpt-4o", "meta/llama-3"},
			sort: ranking.DefaultSort,
		},
		{
			name: "cost asc",
			args: []string{"--sort", "cost", "--order", "asc"},
			ids:  []string{"openai/gpt-4o", "meta/llama-3"},
			sort: ranking.SortState{Key: ranking.SortByCost, Direction: ranking.Ascending},
		},
		{
			name: "latency asc",
			args: []string{"--sort", "latency", "--order", "ascending"},
			ids:  []string{"meta/llama-3", "openai/gpt-4o"},
			sort: ranking.SortState{Key: ranking.SortByLatency, Direction: ranking.Ascending},
		},
		{
			name: "toggle same key flips",
			args: []string{"--toggle", "accuracy"},
			ids:  []string{"meta/llama-3", "openai/gpt-4o"},
			sort: ranking.SortState{Key: ranking.SortByAccuracy, Direction: ranking.Ascending},
		},
		{
			name: "toggle new key starts desc",
			args: []string{"--sort", "accuracy", "--order", "asc", "--toggle", "value_score"},
			ids:  []string{"openai/gpt-4o", "meta/llama-3"},
			sort: ranking.SortState{Key: ranking.SortByValue, Direction: ranking.Descending},
		},
		{
			name: "limit",
			args: []string{"--limit", "1"},
			ids:  []string{"openai/gpt-4o"},
			sort: ranking.DefaultSort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"rank", "--format", "json"}, tt.args...)
			out, err := c.run("", append(args, path)...)
			require.NoError(t, err)

			ids, sel := rankModels(t, out)
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.sort, sel)
		})
	}
}

func TestRankCommand_Table(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	out, err := c.run("", "rank", "--sort", "cost", path)
	require.NoError(t, err)
	assert.Contains(t, out, "RANKING BY cost (desc)")
	assert.Contains(t, out, "#1")
	assert.Less(t, strings.Index(out, "meta/llama-3"), strings.Index(out, "openai/gpt-4o"))
}

func TestRankCommand_ConfigDefaults(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)
	c.write(".leaderboard.yaml", "display:\n  sort: latency\n  order: asc\n")

	out, err := c.run("", "rank", "--format", "json", path)
	require.NoError(t, err)
	ids, sel := rankModels(t, out)
	assert.Equal(t, []string{"meta/llama-3", "openai/gpt-4o"}, ids)
	assert.Equal(t, ranking.SortState{Key: ranking.SortByLatency, Direction: ranking.Ascending}, sel)
}

func TestRankCommand_InvalidFlags(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	_, err := c.run("", "rank", "--sort", "speed", path)
	assert.ErrorIs(t, err, ranking.ErrUnknownSortKey)

	_, err = c.run("", "rank", "--order", "sideways", path)
	assert.ErrorIs(t, err, ranking.ErrUnknownDirection)

	_, err = c.run("", "rank", "--toggle", "speed", path)
	assert.ErrorIs(t, err, ranking.ErrUnknownSortKey)

	_, err = c.run("", "rank", "--format", "xml", path)
	assert.ErrorContains(t, err, "unsupported format")

	_, err = c.run("", "rank", "--limit", "-1", path)
	assert.ErrorContains(t, err, "invalid limit")
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func TestExportCommand_FormatFromExtension(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)
	outPath := filepath.Join(c.dir, "out.csv")

	out, err := c.run("", "export", "-o", outPath, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported csv to "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "rank,model,avg_accuracy,avg_latency,total_cost,value_score,success_rate,cost_share_pct", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,openai/gpt-4o,0.91,120,0.05,18.2,0.98,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "2,meta/llama-3,0.8,90,0.2,4,1,80"), lines[2])
}

func TestExportCommand_Stdout(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	t.Run("markdown by default", func(t *testing.T) {
		out, err := c.run("", "export", path)
		require.NoError(t, err)
		assert.Contains(t, out, "# Benchmark Results")
		assert.Contains(t, out, "Best performer: **gpt-4o**")
	})

	t.Run("html", func(t *testing.T) {
		out, err := c.run("", "export", "--format", "html", path)
		require.NoError(t, err)
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "<table>")
	})

	t.Run("json", func(t *testing.T) {
		out, err := c.run("", "export", "--format", "json", "--sort", "latency", "--order", "asc", path)
		require.NoError(t, err)
		var doc struct {
			Source string            `json:"source"`
			Sort   ranking.SortState `json:"sort"`
			Ranked []ranking.Row     `json:"ranked"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, path, doc.Source)
		require.Len(t, doc.Ranked, 2)
		assert.Equal(t, "meta/llama-3", doc.Ranked[0].Model)
	})

	t.Run("text", func(t *testing.T) {
		out, err := c.run("", "export", "--format", "text", path)
		require.NoError(t, err)
		assert.Contains(t, out, "=== Interpretation ===")
	})
}

func TestExportCommand_UnsupportedFormat(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	_, err := c.run("", "export", "--format", "pdf", path)
	assert.ErrorIs(t, err, reporting.ErrUnsupportedFormat)
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func TestCheckCommand(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	out, err := c.run("", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "conforms to the results schema")
}

func TestCheckCommand_Problems(t *testing.T) {
	c := newCLI(t)
	path := c.write("nan.json", `{"execution_summary": {"total_cost": NaN}, "model_analysis": {}}`)

	out, err := c.run("", "check", path)
	require.NoError(t, err, "problems are warnings without --strict")
	assert.Contains(t, out, "/execution_summary/total_cost: non-finite number")

	_, err = c.run("", "check", "--strict", path)
	var checkErr *CheckFailureError
	require.ErrorAs(t, err, &checkErr)
	assert.Equal(t, ExitCheckFailed, exitCode(err))
}

func TestCheckCommand_JSON(t *testing.T) {
	c := newCLI(t)
	path := c.write("results.json", sampleResults)

	out, err := c.run("", "check", "--format", "json", path)
	require.NoError(t, err)
	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.OK)
	assert.Empty(t, report.Problems)
}

func TestCheckCommand_Unparseable(t *testing.T) {
	c := newCLI(t)
	path := c.write("broken.json", "{oops")

	_, err := c.run("", "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCode(err))
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestAppLocation(t *testing.T) {
	a := &app{cfg: projectconfig.New()}
	a.cfg.Results.Path = "default.json"
	a.cfg.Blob.Container = "benchmarks"

	assert.Equal(t, "default.json", a.location(nil))
	assert.Equal(t, "other.json", a.location([]string{"other.json"}))
	assert.Equal(t, "azblob://benchmarks/run.json", a.location([]string{"azblob://run.json"}))
	assert.Equal(t, "azblob://c/run.json", a.location([]string{"azblob://c/run.json"}))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitCheckFailed, exitCode(&CheckFailureError{Message: "bad"}))
	assert.Equal(t, ExitCheckFailed, exitCode(errors.Join(&CheckFailureError{Message: "bad"}, errors.New("context"))))
	assert.Equal(t, ExitError, exitCode(errors.New("config error")))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "日本 ", padRight("日本", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "abcd…", truncateName("abcdefgh", 5))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", bar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", bar(0, 10))
	assert.Equal(t, "██████████", bar(100, 10))
}
