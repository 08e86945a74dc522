package models

import "time"

// EvaluationSummary is the run-level digest of a benchmark execution.
type EvaluationSummary struct {
	TotalEvaluations int       `json:"total_evaluations"`
	TotalCost        float64   `json:"total_cost"`
	TotalTimeMinutes float64   `json:"total_time_minutes"`
	AvgCostPerEval   float64   `json:"avg_cost_per_eval"`
	CostPerMinute    float64   `json:"cost_per_minute"`
	Timestamp        time.Time `json:"timestamp"`
	// TimestampRaw holds the timestamp text exactly as it appeared in the
	// source record, even when it could not be parsed.
	TimestampRaw string `json:"timestamp_raw,omitempty"`
	Completed    bool   `json:"completed"`
}

// ModelMetric holds the aggregated metrics of a single evaluated model.
// Every field is finite; missing or non-finite source values are zero.
type ModelMetric struct {
	AvgAccuracy float64 `json:"avg_accuracy" mapstructure:"avg_accuracy"`
	AvgLatency  float64 `json:"avg_latency" mapstructure:"avg_latency"`
	TotalCost   float64 `json:"total_cost" mapstructure:"total_cost"`
	ValueScore  float64 `json:"value_score" mapstructure:"value_score"`
	SuccessRate float64 `json:"success_rate" mapstructure:"success_rate"`
}

// ModelEntry pairs a model identifier ("provider/name") with its metrics.
type ModelEntry struct {
	ID     string      `json:"model"`
	Metric ModelMetric `json:"metrics"`
}

// CostEntry is a single row of the cost breakdown section.
type CostEntry struct {
	Model string  `json:"model"`
	Cost  float64 `json:"cost"`
}

// CostShare is a model's cost as an absolute amount and as a share of the
// run's total cost.
type CostShare struct {
	Model      string  `json:"model"`
	Cost       float64 `json:"cost"`
	Percentage float64 `json:"percentage"`
	Display    string  `json:"display"`
}

// RankingView is an ordered sequence of models.
type RankingView []ModelEntry

// Rankings holds the pre-sorted leaderboards provided by the producer of
// the results record. They are authoritative and never recomputed.
type Rankings struct {
	Performance    RankingView `json:"performance"`
	CostEfficiency RankingView `json:"cost_efficiency"`
}

// Results is the normalized form of a benchmark-results record.
type Results struct {
	Summary       EvaluationSummary `json:"execution_summary"`
	Models        []ModelEntry      `json:"model_analysis"`
	CostBreakdown []CostEntry       `json:"cost_breakdown"`
	Rankings      Rankings          `json:"rankings"`
}

// Model returns the entry for id, if present.
func (r *Results) Model(id string) (ModelEntry, bool) {
	for _, m := range r.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelEntry{}, false
}

// IDs returns the model identifiers in source order.
func (r *Results) IDs() []string {
	ids := make([]string, 0, len(r.Models))
	for _, m := range r.Models {
		ids = append(ids, m.ID)
	}
	return ids
}
