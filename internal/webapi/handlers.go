package webapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/models"
	"github.com/spboyer/leaderboard/internal/ranking"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store RunStore
}

// NewHandlers creates a new Handlers with the given store.
func NewHandlers(store RunStore) *Handlers {
	return &Handlers{store: store}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleSummary returns aggregate KPI metrics across all runs.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleRuns returns a list of all runs, with optional sort/order query params.
func (h *Handlers) HandleRuns(w http.ResponseWriter, r *http.Request) {
	sortField := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")

	runs, err := h.store.ListRuns(r.Context(), sortField, order)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// HandleRunDetail returns the full dashboard of a run.
func (h *Handlers) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	d := dashboard.Build(res, ranking.DefaultLeaderboardSize)
	d.Source = r.PathValue("id")
	writeJSON(w, http.StatusOK, d)
}

// HandleRankings returns the model table sorted by the sort and order query
// params. A toggle param names the column chosen by the client: it is
// applied to the sort and order sent, and the response carries the new
// selection.
func (h *Handlers) HandleRankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := parseSortState(q.Get("sort"), q.Get("order"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if toggle := q.Get("toggle"); toggle != "" {
		key, err := ranking.ParseSortKey(toggle)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sel = sel.Toggle(key)
	}
	limit, err := parseLimit(q.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, ok := h.run(w, r)
	if !ok {
		return
	}
	view := sel.Apply(res.Models)
	if limit > 0 {
		view = ranking.TopN(view, limit)
	}
	writeJSON(w, http.StatusOK, RankingResponse{Sort: sel, Rows: ranking.Rows(view)})
}

// HandleCosts returns the cost breakdown with per-model shares.
func (h *Handlers) HandleCosts(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, CostsResponse{
		TotalCost: res.Summary.TotalCost,
		Shares:    ranking.ComputeCostShares(res.CostBreakdown, res.Summary.TotalCost),
	})
}

// HandleLeaderboards returns the top entries of the producer's rankings.
func (h *Handlers) HandleLeaderboards(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), ranking.DefaultLeaderboardSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ranking.BuildLeaderboards(res, limit))
}

// run looks up the run named by the {id} path value, writing an error
// response when it cannot.
func (h *Handlers) run(w http.ResponseWriter, r *http.Request) (*models.Results, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "run id is required")
		return nil, false
	}

	res, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return res, true
}

func parseSortState(key, order string) (ranking.SortState, error) {
	k, err := ranking.ParseSortKey(key)
	if err != nil {
		return ranking.SortState{}, err
	}
	d, err := ranking.ParseDirection(order)
	if err != nil {
		return ranking.SortState{}, err
	}
	return ranking.SortState{Key: k, Direction: d}, nil
}

var errInvalidLimit = errors.New("limit must be a non-negative integer")

func parseLimit(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errInvalidLimit
	}
	return n, nil
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, store RunStore) {
	h := NewHandlers(store)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/runs", h.HandleRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.HandleRunDetail)
	mux.HandleFunc("GET /api/runs/{id}/rankings", h.HandleRankings)
	mux.HandleFunc("GET /api/runs/{id}/costs", h.HandleCosts)
	mux.HandleFunc("GET /api/runs/{id}/leaderboards", h.HandleLeaderboards)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v before writing the header so an encoding failure is
// reported as a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		json.NewEncoder(&buf).Encode(ErrorResponse{ //nolint:errcheck
			Error: fmt.Sprintf("encoding response: %v", err),
			Code:  status,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
