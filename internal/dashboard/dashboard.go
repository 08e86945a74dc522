// Package dashboard assembles every derived view of one benchmark run:
// the normalized summary, cost shares, leaderboards, chart series and fleet
// aggregates consumed by the CLI, the exporters and the web API.
package dashboard

import (
	"context"
	"fmt"

	"github.com/spboyer/leaderboard/internal/metrics"
	"github.com/spboyer/leaderboard/internal/models"
	"github.com/spboyer/leaderboard/internal/normalize"
	"github.com/spboyer/leaderboard/internal/ranking"
	"github.com/spboyer/leaderboard/internal/rawdoc"
	"github.com/spboyer/leaderboard/internal/source"
)

// Dashboard is the full presentation model of a run.
type Dashboard struct {
	Source       string                   `json:"source,omitempty"`
	Summary      models.EvaluationSummary `json:"execution_summary"`
	Models       []models.ModelEntry      `json:"model_analysis"`
	CostShares   []models.CostShare       `json:"cost_shares"`
	Leaderboards ranking.Leaderboards     `json:"leaderboards"`
	Fleet        metrics.Fleet            `json:"fleet"`
	Charts       []ranking.ChartPoint     `json:"charts"`
	Results      *models.Results          `json:"-"`
}

// Parse decodes and normalizes a raw results document.
func Parse(data []byte) (*models.Results, error) {
	tree, err := rawdoc.Parse(data)
	if err != nil {
		return nil, err
	}
	return normalize.Normalize(tree), nil
}

// Load reads, parses and normalizes the document at location.
func Load(ctx context.Context, loader *source.Loader, location string) (*models.Results, error) {
	data, err := loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("loading results: %w", err)
	}
	res, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading results from %s: %w", location, err)
	}
	return res, nil
}

// Build derives all views from res. size is the leaderboard length.
func Build(res *models.Results, size int) *Dashboard {
	return &Dashboard{
		Summary:      res.Summary,
		Models:       res.Models,
		CostShares:   ranking.ComputeCostShares(res.CostBreakdown, res.Summary.TotalCost),
		Leaderboards: ranking.BuildLeaderboards(res, size),
		Fleet:        metrics.Summarize(res.Models),
		Charts:       ranking.ChartSeries(res.Models),
		Results:      res,
	}
}

// Ranked returns the full model table ordered by the given selection.
func (d *Dashboard) Ranked(sel ranking.SortState, limit int) models.RankingView {
	view := sel.Apply(d.Models)
	if limit > 0 {
		view = ranking.TopN(view, limit)
	}
	return view
}
