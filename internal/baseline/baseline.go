// Package baseline computes rolling statistical baselines and z-scores for
// daily metric series, per (country, category) ordered by date.
package baseline

import (
	"log"
	"math"
	"time"

	"github.com/georisk/georisk/internal/database"
)

// MADScaleForNormal rescales a median absolute deviation so that robust
// z-scores are comparable to a standard-normal sigma.
const MADScaleForNormal = 0.6745

// Quality gate values for a baseline.
const (
	QualityLow = "low"
	QualityOK  = "ok"
)

// Baseline methods.
const (
	MethodRobust   = "robust"
	MethodStandard = "standard"
)

// Engine computes rolling baselines over stored daily metrics.
type Engine struct {
	db         *database.DB
	method     string
	windowDays int
	minPeriods int
	version    string
}

// NewEngine creates a baseline engine. method is "robust" or "standard".
func NewEngine(db *database.DB, method string, windowDays, minPeriods int, version string) *Engine {
	return &Engine{
		db:         db,
		method:     method,
		windowDays: windowDays,
		minPeriods: minPeriods,
		version:    version,
	}
}

// ComputeCountBaselines writes rolling_center, rolling_dispersion,
// baseline_quality and z_score for every metric row. Insufficient history is
// a quality state, not an error: every row gets the triple, possibly
// null/"low". Returns the number of rows updated.
func (e *Engine) ComputeCountBaselines() (int, error) {
	metrics, err := e.db.GetMetricSeries()
	if err != nil {
		return 0, err
	}
	if len(metrics) == 0 {
		log.Println("no daily metrics for rolling baselines")
		return 0, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updated := 0

	for _, series := range splitSeries(metrics) {
		counts := make([]float64, len(series))
		for i, m := range series {
			counts[i] = float64(m.EventCount)
		}

		var center, dispersion []float64
		if e.method == MethodStandard {
			center = rollingMean(counts, e.windowDays, e.minPeriods)
			dispersion = rollingStd(counts, e.windowDays, e.minPeriods)
		} else {
			center = rollingMedian(counts, e.windowDays, e.minPeriods)
			dispersion = rollingMAD(counts, e.windowDays, e.minPeriods)
		}
		inWindow := rollingCount(counts, e.windowDays, 1)

		for i, m := range series {
			quality := QualityLow
			if !math.IsNaN(inWindow[i]) && int(inWindow[i]) >= e.minPeriods {
				quality = QualityOK
			}

			z := math.NaN()
			if quality == QualityOK && !math.IsNaN(dispersion[i]) && dispersion[i] > 0 {
				if e.method == MethodStandard {
					z = (counts[i] - center[i]) / dispersion[i]
				} else {
					z = MADScaleForNormal * (counts[i] - center[i]) / dispersion[i]
				}
			}

			err := e.db.UpdateMetricBaseline(m.ID, fromNaN(center[i]), fromNaN(dispersion[i]),
				quality, e.method, e.windowDays, fromNaN(z), now, e.version)
			if err != nil {
				return updated, err
			}
			updated++
		}
	}

	log.Printf("rolling baselines updated: %d rows (method=%s)", updated, e.method)
	return updated, nil
}

// ComputeSeverityBaselines writes the independent severity baseline: robust
// statistics over log1p-transformed severity_index, with the center stored
// back in the original 0-100 scale via expm1. Quality gating reuses the
// count baseline's quality flag, so ComputeCountBaselines must run first.
func (e *Engine) ComputeSeverityBaselines() (int, error) {
	metrics, err := e.db.GetMetricSeries()
	if err != nil {
		return 0, err
	}
	if len(metrics) == 0 {
		return 0, nil
	}

	updated := 0
	for _, series := range splitSeries(metrics) {
		sevLog := make([]float64, len(series))
		for i, m := range series {
			sev := 0.0
			if m.SeverityIndex != nil {
				sev = *m.SeverityIndex
			}
			if sev < 0 {
				sev = 0
			}
			// Shift by +1 before log1p to stabilize the scale of a
			// bounded [0,100] quantity.
			sevLog[i] = math.Log1p(sev + 1)
		}

		center := rollingMedian(sevLog, e.windowDays, e.minPeriods)
		dispersion := rollingMAD(sevLog, e.windowDays, e.minPeriods)

		for i, m := range series {
			z := math.NaN()
			if m.BaselineQuality == QualityOK && !math.IsNaN(dispersion[i]) && dispersion[i] > 0 {
				z = MADScaleForNormal * (sevLog[i] - center[i]) / dispersion[i]
			}

			stored := math.NaN()
			if !math.IsNaN(center[i]) {
				stored = math.Expm1(center[i])
			}

			err := e.db.UpdateMetricSeverityBaseline(m.ID, fromNaN(stored), fromNaN(dispersion[i]), fromNaN(z))
			if err != nil {
				return updated, err
			}
			updated++
		}
	}

	log.Printf("severity baselines updated: %d rows", updated)
	return updated, nil
}

// splitSeries chunks metrics ordered by (country, category, date) into one
// slice per (country, category) series.
func splitSeries(metrics []database.DailyMetric) [][]database.DailyMetric {
	var series [][]database.DailyMetric
	start := 0
	for i := 1; i <= len(metrics); i++ {
		if i == len(metrics) ||
			metrics[i].Country != metrics[start].Country ||
			metrics[i].Category != metrics[start].Category {
			series = append(series, metrics[start:i])
			start = i
		}
	}
	return series
}

// fromNaN converts NaN to nil for nullable storage.
func fromNaN(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
