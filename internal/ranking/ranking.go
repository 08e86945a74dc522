// Package ranking computes derived views over normalized benchmark results:
// cost shares, stably sorted rankings and leaderboard prefixes.
//
// Every function is pure. Inputs are never mutated and each call returns a
// freshly allocated result, so views may be computed concurrently.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/spboyer/leaderboard/internal/display"
	"github.com/spboyer/leaderboard/internal/models"
)

// SortKey selects the metric a ranking is ordered by.
type SortKey string

const (
	SortByAccuracy SortKey = "accuracy"
	SortByCost     SortKey = "cost"
	SortByLatency  SortKey = "latency"
	SortByValue    SortKey = "value"
)

// SortKeys lists every supported key in display order.
var SortKeys = []SortKey{SortByAccuracy, SortByLatency, SortByCost, SortByValue}

// Direction is the sort direction of a ranking.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

var (
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// ParseSortKey parses a sort key name. The empty string selects the default.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return DefaultSort.Key, nil
	case SortByAccuracy, SortByCost, SortByLatency, SortByValue:
		return k, nil
	case "value_score":
		return SortByValue, nil
	}
	return "", fmt.Errorf("%w %q: must be one of accuracy, cost, latency, value", ErrUnknownSortKey, s)
}

// ParseDirection parses a direction. The empty string selects descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	}
	return "", fmt.Errorf("%w %q: must be asc or desc", ErrUnknownDirection, s)
}

// Value returns the metric selected by k.
func (k SortKey) Value(m models.ModelMetric) float64 {
	switch k {
	case SortByCost:
		return m.TotalCost
	case SortByLatency:
		return m.AvgLatency
	case SortByValue:
		return m.ValueScore
	default:
		return m.AvgAccuracy
	}
}

// SortState is a sort selection: the key and direction of the current view.
type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by accuracy, best first.
var DefaultSort = SortState{Key: SortByAccuracy, Direction: Descending}

// Toggle returns the selection after choosing key: the same key flips the
// direction, a different key starts descending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Direction == Descending {
			return SortState{Key: key, Direction: Ascending}
		}
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Descending}
}

// Apply ranks entries with this selection.
func (s SortState) Apply(entries []models.ModelEntry) models.RankingView {
	return RankBy(entries, s.Key, s.Direction)
}

// RankBy returns entries ordered by key in the given direction. The sort is
// stable in both directions: entries with equal keys keep their input order,
// so a descending view is not simply the ascending view reversed.
func RankBy(entries []models.ModelEntry, key SortKey, dir Direction) models.RankingView {
	view := make(models.RankingView, len(entries))
	copy(view, entries)
	slices.SortStableFunc(view, func(a, b models.ModelEntry) int {
		c := cmp.Compare(key.Value(a.Metric), key.Value(b.Metric))
		if dir == Descending {
			return -c
		}
		return c
	})
	return view
}

// TopN returns the first n entries of view, or all of them when the view is
// shorter. n <= 0 yields an empty view.
func TopN(view models.RankingView, n int) models.RankingView {
	n = max(0, min(n, len(view)))
	out := make(models.RankingView, n)
	copy(out, view[:n])
	return out
}

// BestPerformer returns the head of a performance-ranked view. The boolean
// is false when no models were evaluated.
func BestPerformer(view models.RankingView) (models.ModelEntry, bool) {
	return head(view)
}

// CostLeader returns the head of a cost-efficiency-ranked view. The boolean
// is false when no models were evaluated.
func CostLeader(view models.RankingView) (models.ModelEntry, bool) {
	return head(view)
}

func head(view models.RankingView) (models.ModelEntry, bool) {
	if len(view) == 0 {
		return models.ModelEntry{}, false
	}
	return view[0], true
}

// ComputeCostShares expresses each model's cost as a percentage of
// totalCost, in breakdown order. Percentages are zero when totalCost is not
// a positive finite number.
func ComputeCostShares(breakdown []models.CostEntry, totalCost float64) []models.CostShare {
	valid := totalCost > 0 && !math.IsInf(totalCost, 0)
	shares := make([]models.CostShare, 0, len(breakdown))
	for _, e := range breakdown {
		pct := 0.0
		if valid {
			pct = e.Cost / totalCost * 100
		}
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			pct = 0
		}
		shares = append(shares, models.CostShare{
			Model:      e.Model,
			Cost:       e.Cost,
			Percentage: pct,
			Display:    display.Percent(pct),
		})
	}
	return shares
}
