// Package normalize converts a loosely-typed benchmark-results record into a
// fully-defaulted, finite-numeric [models.Results].
//
// Normalization never fails. Absent sections become empty, and any numeric
// leaf that is not a finite real number becomes zero.
package normalize

import (
	"encoding/json"
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/leaderboard/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	SectionSummary  = "execution_summary"
	SectionModels   = "model_analysis"
	SectionCosts    = "cost_breakdown"
	SectionRankings = "rankings"

	RankingPerformance    = "performance"
	RankingCostEfficiency = "cost_efficiency"
)

// maxCount bounds integer counts so the float to int conversion is exact.
const maxCount = 1 << 53

// timestampLayouts are tried in order. Producers commonly omit the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// rawSummary mirrors execution_summary before type coercion.
type rawSummary struct {
	TotalEvaluations float64 `mapstructure:"total_evaluations"`
	TotalCost        float64 `mapstructure:"total_cost"`
	TotalTimeMinutes float64 `mapstructure:"total_time_minutes"`
	AvgCostPerEval   float64 `mapstructure:"avg_cost_per_eval"`
	CostPerMinute    float64 `mapstructure:"cost_per_minute"`
	Timestamp        any     `mapstructure:"timestamp"`
	Completed        bool    `mapstructure:"completed"`
	Status           any     `mapstructure:"status"`
}

// Normalize returns the normalized form of raw. raw is typically the tree
// produced by the rawdoc package, but any value is accepted: objects may be
// *orderedmap.OrderedMap[string, any] (source order is kept) or
// map[string]any (iterated in sorted key order).
func Normalize(raw any) *models.Results {
	root := toMap(raw)

	res := &models.Results{
		Summary:       normalizeSummary(root[SectionSummary]),
		Models:        normalizeModels(root[SectionModels]),
		CostBreakdown: normalizeCosts(root[SectionCosts]),
	}
	res.Rankings = normalizeRankings(root[SectionRankings], res.Models)
	return res
}

// Finite reports whether v is a finite real number and returns it as a
// float64. Strings are never parsed.
func Finite(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Metric decodes a single metric object. Non-object input yields the zero
// metric.
func Metric(raw any) models.ModelMetric {
	var m models.ModelMetric
	obj, ok := asMap(raw)
	if !ok {
		slog.Debug("metric is not an object, using defaults", "type", typeName(raw))
		return m
	}
	if err := decode(obj, &m); err != nil {
		slog.Debug("metric decode failed, using defaults", "error", err)
		return models.ModelMetric{}
	}
	m.AvgAccuracy = fraction(m.AvgAccuracy)
	m.SuccessRate = fraction(m.SuccessRate)
	m.AvgLatency = nonNegative(m.AvgLatency)
	m.TotalCost = nonNegative(m.TotalCost)
	return m
}

func normalizeSummary(raw any) models.EvaluationSummary {
	var s models.EvaluationSummary
	obj, ok := asMap(raw)
	if !ok {
		if raw != nil {
			slog.Debug("execution summary is not an object, using defaults", "type", typeName(raw))
		}
		return s
	}

	var rs rawSummary
	if err := decode(obj, &rs); err != nil {
		slog.Debug("execution summary decode failed, using defaults", "error", err)
		return s
	}

	s.TotalEvaluations = int(math.Min(math.Trunc(nonNegative(rs.TotalEvaluations)), maxCount))
	s.TotalCost = nonNegative(rs.TotalCost)
	s.TotalTimeMinutes = nonNegative(rs.TotalTimeMinutes)
	s.AvgCostPerEval = nonNegative(rs.AvgCostPerEval)
	s.CostPerMinute = nonNegative(rs.CostPerMinute)
	s.Completed = rs.Completed
	if status, ok := rs.Status.(string); ok && strings.EqualFold(strings.TrimSpace(status), "completed") {
		s.Completed = true
	}
	if text, ok := rs.Timestamp.(string); ok {
		s.TimestampRaw = text
		s.Timestamp = parseTimestamp(text)
	}
	return s
}

func normalizeModels(raw any) []models.ModelEntry {
	fields, ok := orderedFields(raw)
	if !ok {
		if raw != nil {
			slog.Debug("model analysis is not an object, using empty set", "type", typeName(raw))
		}
		return []models.ModelEntry{}
	}
	entries := make([]models.ModelEntry, 0, len(fields))
	for _, f := range fields {
		entries = append(entries, models.ModelEntry{ID: f.key, Metric: Metric(f.value)})
	}
	return entries
}

func normalizeCosts(raw any) []models.CostEntry {
	fields, ok := orderedFields(raw)
	if !ok {
		return []models.CostEntry{}
	}
	entries := make([]models.CostEntry, 0, len(fields))
	for _, f := range fields {
		cost, ok := Finite(f.value)
		if !ok {
			slog.Debug("cost is not a finite number, using 0", "model", f.key)
		}
		entries = append(entries, models.CostEntry{Model: f.key, Cost: nonNegative(cost)})
	}
	return entries
}

func normalizeRankings(raw any, known []models.ModelEntry) models.Rankings {
	obj, _ := asMap(raw)
	return models.Rankings{
		Performance:    normalizePairs(obj[RankingPerformance], known),
		CostEfficiency: normalizePairs(obj[RankingCostEfficiency], known),
	}
}

// normalizePairs reads a sequence of [id, metric] pairs. Malformed pairs are
// skipped and repeated ids keep their first position. A pair without a
// metric object borrows the metric from model_analysis.
func normalizePairs(raw any, known []models.ModelEntry) models.RankingView {
	list, ok := raw.([]any)
	if !ok {
		return models.RankingView{}
	}
	view := make(models.RankingView, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) == 0 {
			slog.Debug("skipping malformed ranking entry", "index", i)
			continue
		}
		id, ok := pair[0].(string)
		if !ok || seen[id] {
			slog.Debug("skipping ranking entry without a unique id", "index", i)
			continue
		}
		seen[id] = true

		entry := models.ModelEntry{ID: id}
		if len(pair) > 1 {
			if _, isObj := asMap(pair[1]); isObj {
				entry.Metric = Metric(pair[1])
				view = append(view, entry)
				continue
			}
		}
		if idx := slices.IndexFunc(known, func(m models.ModelEntry) bool { return m.ID == id }); idx >= 0 {
			entry.Metric = known[idx].Metric
		}
		view = append(view, entry)
	}
	return view
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(coerceHook),
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// coerceHook replaces values that do not fit numeric and boolean targets
// with their zero value, so decoding never fails on a mistyped leaf.
func coerceHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Float64, reflect.Float32:
		f, ok := Finite(data)
		if !ok {
			slog.Debug("substituting 0 for non-finite value", "type", typeName(data))
			return 0.0, nil
		}
		return f, nil
	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return false, nil
		}
		return b, nil
	}
	return data, nil
}

func parseTimestamp(text string) time.Time {
	text = strings.TrimSpace(text)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	slog.Debug("unparseable timestamp", "value", text)
	return time.Time{}
}

type field struct {
	key   string
	value any
}

// orderedFields returns the entries of an object in a deterministic order.
func orderedFields(v any) ([]field, bool) {
	switch m := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if m == nil {
			return nil, false
		}
		out := make([]field, 0, m.Len())
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, field{key: pair.Key, value: pair.Value})
		}
		return out, true
	case map[string]any:
		if m == nil {
			return nil, false
		}
		out := make([]field, 0, len(m))
		for _, k := range slices.Sorted(maps.Keys(m)) {
			out = append(out, field{key: k, value: m[k]})
		}
		return out, true
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	fields, ok := orderedFields(v)
	if !ok {
		return nil, false
	}
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.key] = f.value
	}
	return m, true
}

func toMap(v any) map[string]any {
	m, ok := asMap(v)
	if !ok {
		return map[string]any{}
	}
	return m
}

func nonNegative(f float64) float64 {
	return math.Max(f, 0)
}

func fraction(f float64) float64 {
	return math.Min(math.Max(f, 0), 1)
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}
