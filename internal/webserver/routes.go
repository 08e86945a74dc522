package webserver

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/ranking"
	"github.com/spboyer/leaderboard/internal/reporting"
	"github.com/spboyer/leaderboard/internal/webapi"
)

// registerRoutes sets up the JSON API and the HTML dashboard pages.
func registerRoutes(mux *http.ServeMux, store webapi.RunStore) {
	webapi.RegisterRoutes(mux, store)

	pages := &pageHandlers{store: store}
	mux.HandleFunc("GET /{$}", pages.handleLatest)
	mux.HandleFunc("GET /runs/{id}", pages.handleRun)
}

type pageHandlers struct {
	store webapi.RunStore
}

// handleLatest renders the dashboard of the most recent run.
func (p *pageHandlers) handleLatest(w http.ResponseWriter, r *http.Request) {
	runs, err := p.store.ListRuns(r.Context(), "timestamp", "desc")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(runs) == 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, emptyPage) //nolint:errcheck
		return
	}
	p.render(w, r, runs[0].ID)
}

// handleRun renders the dashboard of the run named by the path.
func (p *pageHandlers) handleRun(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, r.PathValue("id"))
}

func (p *pageHandlers) render(w http.ResponseWriter, r *http.Request, id string) {
	res, err := p.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, webapi.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	sel, err := sortFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d := dashboard.Build(res, ranking.DefaultLeaderboardSize)
	d.Source = id
	var buf bytes.Buffer
	if err := reporting.Write(&buf, d, sel, reporting.FormatHTML); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck
}

func sortFromQuery(r *http.Request) (ranking.SortState, error) {
	q := r.URL.Query()
	key, err := ranking.ParseSortKey(q.Get("sort"))
	if err != nil {
		return ranking.SortState{}, err
	}
	dir, err := ranking.ParseDirection(q.Get("order"))
	if err != nil {
		return ranking.SortState{}, err
	}
	return ranking.SortState{Key: key, Direction: dir}, nil
}

const emptyPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Benchmark Results</title></head>
<body><p>No benchmark runs found.</p></body>
</html>
`
