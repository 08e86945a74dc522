package webapi

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spboyer/leaderboard/internal/dashboard"
	"github.com/spboyer/leaderboard/internal/metrics"
	"github.com/spboyer/leaderboard/internal/models"
	"github.com/spboyer/leaderboard/internal/ranking"
	"github.com/spboyer/leaderboard/internal/source"
	"golang.org/x/sync/errgroup"
)

// ErrRunNotFound is returned when a run ID does not match any stored run.
var ErrRunNotFound = errors.New("run not found")

// loadConcurrency bounds the number of result files read at once.
const loadConcurrency = 8

// resultSuffixes are the file name suffixes recognized as results
// documents, longest first so the run ID strips the whole suffix.
var resultSuffixes = []string{".json.gz", ".json.zst", ".json", ".yaml", ".yml"}

// RunStore provides access to benchmark runs.
type RunStore interface {
	// ListRuns returns all runs, sorted by the given field and order.
	ListRuns(ctx context.Context, sortField, order string) ([]RunSummary, error)
	// GetRun returns the normalized results of a single run.
	GetRun(ctx context.Context, id string) (*models.Results, error)
	// Summary returns aggregate metrics across all runs.
	Summary(ctx context.Context) (*SummaryResponse, error)
}

// FileStore reads results documents from a directory.
type FileStore struct {
	dir    string
	loader *source.Loader
	logger *slog.Logger

	mu      sync.RWMutex
	runs    map[string]*models.Results
	loaded  bool
	loadErr error
}

// NewFileStore creates a FileStore that reads results from dir. A nil
// logger selects slog.Default().
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		dir:    dir,
		loader: source.NewLoader(source.Options{}),
		logger: logger,
		runs:   make(map[string]*models.Results),
	}
}

// RunID derives a run ID from a results file name. ok is false when the
// name is not a results document.
func RunID(name string) (id string, ok bool) {
	lower := strings.ToLower(name)
	for _, suffix := range resultSuffixes {
		if strings.HasSuffix(lower, suffix) {
			id = name[:len(name)-len(suffix)]
			return id, id != ""
		}
	}
	return "", false
}

// load reads all results files from the configured directory. Files that
// cannot be read or parsed are skipped.
func (fs *FileStore) load(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	fs.runs = make(map[string]*models.Results)

	if fs.dir == "" {
		fs.loaded = true
		return nil
	}

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			fs.loaded = true
			return nil
		}
		fs.loadErr = err
		return err
	}

	type file struct {
		id   string
		path string
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := RunID(e.Name())
		if !ok {
			continue
		}
		files = append(files, file{id: id, path: filepath.Join(fs.dir, e.Name())})
	}

	loaded := make([]*models.Results, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := dashboard.Load(gctx, fs.loader, f.path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				fs.logger.Warn("skipping results file", "path", f.path, "error", err)
				return nil
			}
			loaded[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fs.loadErr = err
		return err
	}

	for i, f := range files {
		if loaded[i] == nil {
			continue
		}
		if _, dup := fs.runs[f.id]; dup {
			fs.logger.Warn("duplicate run id, keeping first", "id", f.id, "path", f.path)
			continue
		}
		fs.runs[f.id] = loaded[i]
	}
	fs.logger.Debug("loaded runs", "dir", fs.dir, "count", len(fs.runs))

	fs.loaded = true
	fs.loadErr = nil
	return nil
}

// ensureLoaded loads data if not already loaded. The load is bound to ctx.
func (fs *FileStore) ensureLoaded(ctx context.Context) error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load(ctx)
}

// Reload forces a fresh reload of all results files from disk.
func (fs *FileStore) Reload(ctx context.Context) error {
	return fs.load(ctx)
}

func resultsToSummary(id string, res *models.Results) RunSummary {
	s := RunSummary{
		ID:               id,
		Timestamp:        res.Summary.Timestamp,
		TimestampRaw:     res.Summary.TimestampRaw,
		Completed:        res.Summary.Completed,
		TotalEvaluations: res.Summary.TotalEvaluations,
		TotalCost:        res.Summary.TotalCost,
		TotalTimeMinutes: res.Summary.TotalTimeMinutes,
		Models:           len(res.Models),
	}
	if best, ok := ranking.BestPerformer(res.Rankings.Performance); ok {
		s.BestPerformer = best.ID
		s.BestAccuracy = best.Metric.AvgAccuracy
	}
	if leader, ok := ranking.CostLeader(res.Rankings.CostEfficiency); ok {
		s.CostLeader = leader.ID
	}
	return s
}

// ListRuns returns all runs sorted by the given field and order.
func (fs *FileStore) ListRuns(ctx context.Context, sortField, order string) ([]RunSummary, error) {
	if err := fs.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	runs := make([]RunSummary, 0, len(fs.runs))
	for id, res := range fs.runs {
		runs = append(runs, resultsToSummary(id, res))
	}

	sortRuns(runs, sortField, order)
	return runs, nil
}

// GetRun returns the normalized results of a single run.
func (fs *FileStore) GetRun(ctx context.Context, id string) (*models.Results, error) {
	if err := fs.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	res, ok := fs.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return res, nil
}

// Summary returns aggregate metrics across all runs.
func (fs *FileStore) Summary(ctx context.Context) (*SummaryResponse, error) {
	if err := fs.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return summarize(fs.runs), nil
}

func summarize(runs map[string]*models.Results) *SummaryResponse {
	resp := &SummaryResponse{}
	if len(runs) == 0 {
		return resp
	}

	seen := make(map[string]struct{})
	totalMinutes := 0.0
	for _, res := range runs {
		resp.TotalRuns++
		if res.Summary.Completed {
			resp.CompletedRuns++
		}
		resp.TotalEvaluations = metrics.AddCount(resp.TotalEvaluations, res.Summary.TotalEvaluations)
		resp.TotalCost = metrics.Add(resp.TotalCost, res.Summary.TotalCost)
		totalMinutes = metrics.Add(totalMinutes, res.Summary.TotalTimeMinutes)
		for _, m := range res.Models {
			seen[m.ID] = struct{}{}
		}
	}

	resp.DistinctModels = len(seen)
	resp.AvgCost = resp.TotalCost / float64(resp.TotalRuns)
	resp.AvgTimeMinutes = totalMinutes / float64(resp.TotalRuns)
	if resp.TotalEvaluations > 0 {
		resp.AvgCostPerEval = resp.TotalCost / float64(resp.TotalEvaluations)
	}
	return resp
}

// sortRuns orders runs by field. Ties fall back to the run ID so the
// listing is deterministic.
func sortRuns(runs []RunSummary, field, order string) {
	compare := func(a, b RunSummary) int {
		switch field {
		case "cost":
			return cmp.Compare(a.TotalCost, b.TotalCost)
		case "evaluations":
			return cmp.Compare(a.TotalEvaluations, b.TotalEvaluations)
		case "duration":
			return cmp.Compare(a.TotalTimeMinutes, b.TotalTimeMinutes)
		case "models":
			return cmp.Compare(a.Models, b.Models)
		case "accuracy":
			return cmp.Compare(a.BestAccuracy, b.BestAccuracy)
		default: // "timestamp" or empty
			return a.Timestamp.Compare(b.Timestamp)
		}
	}

	slices.SortFunc(runs, func(a, b RunSummary) int {
		c := compare(a, b)
		if order != "asc" {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		return c
	})
}

// Ensure FileStore satisfies RunStore.
var _ RunStore = (*FileStore)(nil)
