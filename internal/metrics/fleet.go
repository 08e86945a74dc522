// Package metrics aggregates per-model metrics across a whole run.
package metrics

import (
	"math"

	"github.com/spboyer/leaderboard/internal/models"
)

// Fleet summarizes the models of one run.
type Fleet struct {
	Models          int     `json:"models"`
	MeanAccuracy    float64 `json:"mean_accuracy"`
	StdDevAccuracy  float64 `json:"std_dev_accuracy"`
	MeanLatency     float64 `json:"mean_latency"`
	StdDevLatency   float64 `json:"std_dev_latency"`
	MeanSuccessRate float64 `json:"mean_success_rate"`
	ModelCost       float64 `json:"model_cost"`
}

// Summarize computes fleet aggregates. An empty input yields the zero Fleet.
func Summarize(entries []models.ModelEntry) Fleet {
	f := Fleet{Models: len(entries)}
	if len(entries) == 0 {
		return f
	}

	acc := make([]float64, 0, len(entries))
	lat := make([]float64, 0, len(entries))
	success := make([]float64, 0, len(entries))
	for _, e := range entries {
		acc = append(acc, e.Metric.AvgAccuracy)
		lat = append(lat, e.Metric.AvgLatency)
		success = append(success, e.Metric.SuccessRate)
		f.ModelCost = Add(f.ModelCost, e.Metric.TotalCost)
	}

	f.MeanAccuracy = Mean(acc)
	f.StdDevAccuracy = StdDev(acc)
	f.MeanLatency = Mean(lat)
	f.StdDevLatency = StdDev(lat)
	f.MeanSuccessRate = Mean(success)
	return f
}

// Add returns a+b saturated to the finite float range.
func Add(a, b float64) float64 {
	return bound(a + b)
}

// AddCount returns a+b for non-negative counts, saturating at math.MaxInt.
func AddCount(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

// Mean computes the arithmetic mean of finite values. Returns 0 for empty
// input. The result stays finite when the plain sum would overflow.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return sum / n
	}
	m := 0.0
	for _, v := range values {
		m += v / n
	}
	return bound(m)
}

// StdDev computes the population standard deviation of finite values.
// Returns 0 for empty input. Values are scaled by their largest magnitude
// before squaring so the result never overflows.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	scale := 0.0
	for _, v := range values {
		scale = max(scale, math.Abs(v))
	}
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return 0
	}
	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += v / scale
	}
	m := sum / n
	sumSq := 0.0
	for _, v := range values {
		d := v/scale - m
		sumSq += d * d
	}
	return bound(scale * math.Sqrt(sumSq/n))
}

// bound clamps f to [-math.MaxFloat64, math.MaxFloat64].
func bound(f float64) float64 {
	return min(max(f, -math.MaxFloat64), math.MaxFloat64)
}
