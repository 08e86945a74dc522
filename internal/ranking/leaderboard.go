package ranking

import (
	"fmt"

	"github.com/spboyer/leaderboard/internal/display"
	"github.com/spboyer/leaderboard/internal/models"
)

// DefaultLeaderboardSize is the number of places shown per leaderboard.
const DefaultLeaderboardSize = 3

// Leaderboards holds the top entries of the upstream-provided rankings and
// their leaders. A nil leader means the ranking was empty.
type Leaderboards struct {
	Performance    models.RankingView `json:"performance"`
	CostEfficiency models.RankingView `json:"cost_efficiency"`
	BestPerformer  *models.ModelEntry `json:"best_performer"`
	CostLeader     *models.ModelEntry `json:"cost_leader"`
}

// BuildLeaderboards takes the first n entries of each pre-sorted ranking in
// res. The rankings are used as given; their order is owned upstream.
func BuildLeaderboards(res *models.Results, n int) Leaderboards {
	lb := Leaderboards{
		Performance:    TopN(res.Rankings.Performance, n),
		CostEfficiency: TopN(res.Rankings.CostEfficiency, n),
	}
	if best, ok := BestPerformer(res.Rankings.Performance); ok {
		lb.BestPerformer = &best
	}
	if leader, ok := CostLeader(res.Rankings.CostEfficiency); ok {
		lb.CostLeader = &leader
	}
	return lb
}

// Row is a ranked model with its display strings.
type Row struct {
	Rank        int                `json:"rank"`
	Model       string             `json:"model"`
	Name        string             `json:"name"`
	Metric      models.ModelMetric `json:"metrics"`
	Accuracy    string             `json:"accuracy"`
	Latency     string             `json:"latency"`
	Cost        string             `json:"cost"`
	ValueScore  string             `json:"value_score"`
	SuccessRate string             `json:"success_rate"`
}

// Rows renders a view with 1-based ranks.
func Rows(view models.RankingView) []Row {
	rows := make([]Row, 0, len(view))
	for i, e := range view {
		rows = append(rows, Row{
			Rank:        i + 1,
			Model:       e.ID,
			Name:        display.ShortName(e.ID),
			Metric:      e.Metric,
			Accuracy:    display.Accuracy(e.Metric.AvgAccuracy),
			Latency:     display.Latency(e.Metric.AvgLatency),
			Cost:        display.Cost(e.Metric.TotalCost),
			ValueScore:  display.ValueScore(e.Metric.ValueScore),
			SuccessRate: display.SuccessRate(e.Metric.SuccessRate),
		})
	}
	return rows
}

// ChartPoint is one model in the accuracy, latency and value charts.
// Accuracy is a whole percentage and latency whole milliseconds.
type ChartPoint struct {
	Model      string  `json:"model"`
	Label      string  `json:"label"`
	Accuracy   int     `json:"accuracy"`
	Latency    int     `json:"latency"`
	Cost       float64 `json:"cost"`
	ValueScore float64 `json:"value_score"`
}

// ChartSeries returns one chart point per model, in source order.
func ChartSeries(entries []models.ModelEntry) []ChartPoint {
	points := make([]ChartPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, ChartPoint{
			Model:      e.ID,
			Label:      display.ShortName(e.ID),
			Accuracy:   wholeNumber(e.Metric.AvgAccuracy * 100),
			Latency:    wholeNumber(e.Metric.AvgLatency),
			Cost:       e.Metric.TotalCost,
			ValueScore: e.Metric.ValueScore,
		})
	}
	return points
}

// wholeNumber rounds f and bounds it to the exactly representable range.
func wholeNumber(f float64) int {
	const limit = 1 << 53
	return int(min(max(display.Round(f, 0), -limit), limit))
}

// String renders the selection as e.g. "accuracy desc".
func (s SortState) String() string {
	return fmt.Sprintf("%s %s", s.Key, s.Direction)
}
