package webapi

import (
	"time"

	"github.com/spboyer/leaderboard/internal/models"
	"github.com/spboyer/leaderboard/internal/ranking"
)

// RunSummary is the API response for a single run in the list.
type RunSummary struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	TimestampRaw     string    `json:"timestampRaw,omitempty"`
	Completed        bool      `json:"completed"`
	TotalEvaluations int       `json:"totalEvaluations"`
	TotalCost        float64   `json:"totalCost"`
	TotalTimeMinutes float64   `json:"totalTimeMinutes"`
	Models           int       `json:"models"`
	BestPerformer    string    `json:"bestPerformer,omitempty"`
	BestAccuracy     float64   `json:"bestAccuracy"`
	CostLeader       string    `json:"costLeader,omitempty"`
}

// RankingResponse is a sorted model table.
type RankingResponse struct {
	Sort ranking.SortState `json:"sort"`
	Rows []ranking.Row     `json:"rows"`
}

// CostsResponse is the cost breakdown of a run with per-model shares.
type CostsResponse struct {
	TotalCost float64            `json:"totalCost"`
	Shares    []models.CostShare `json:"shares"`
}

// SummaryResponse is the aggregate KPI response.
type SummaryResponse struct {
	TotalRuns        int     `json:"totalRuns"`
	CompletedRuns    int     `json:"completedRuns"`
	TotalEvaluations int     `json:"totalEvaluations"`
	DistinctModels   int     `json:"distinctModels"`
	TotalCost        float64 `json:"totalCost"`
	AvgCost          float64 `json:"avgCost"`
	AvgCostPerEval   float64 `json:"avgCostPerEval"`
	AvgTimeMinutes   float64 `json:"avgTimeMinutes"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
