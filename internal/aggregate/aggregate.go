// Package aggregate folds raw events into one daily metric row per
// (date, country, category), including the explainable severity index.
package aggregate

import (
	"log"
	"math"
	"sort"

	"github.com/georisk/georisk/internal/database"
)

// UnknownCountry is the sentinel code for events without a country.
const UnknownCountry = "XX"

// Severity index weights: negative goldstein, negative tone, quad intensity.
const (
	sevWeightGoldstein = 0.4
	sevWeightTone      = 0.3
	sevWeightQuad      = 0.3
)

// Aggregator computes daily metrics from stored events.
type Aggregator struct {
	db *database.DB
}

// New creates an Aggregator.
func New(db *database.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Run aggregates all categorized events and replaces the daily_metrics table
// with the result. The full recompute keeps the aggregate consistent with
// the complete event history on every run. Returns the number of metric rows
// written; no events yields zero rows and no error.
func (a *Aggregator) Run() (int, error) {
	events, err := a.db.GetCategorizedEvents()
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		log.Println("no events to aggregate")
		if err := a.db.ReplaceDailyMetrics(nil); err != nil {
			return 0, err
		}
		return 0, nil
	}

	metrics := Aggregate(events)
	if err := a.db.ReplaceDailyMetrics(metrics); err != nil {
		return 0, err
	}

	log.Printf("aggregated %d events into %d daily metric rows", len(events), len(metrics))
	return len(metrics), nil
}

type groupKey struct {
	date     string
	country  string
	category string
}

type groupAccum struct {
	count        int
	toneSum      float64
	toneN        int
	goldSum      float64
	goldN        int
	goldMin      float64
	negativeTone int
	quadSum      float64
}

// Aggregate groups events by (date, country, category) and computes the per
// group metrics. Events without a category are ignored; an absent country is
// normalized to the unknown sentinel.
func Aggregate(events []database.Event) []database.DailyMetric {
	groups := make(map[groupKey]*groupAccum)

	for _, e := range events {
		if e.Category == nil {
			continue
		}
		country := UnknownCountry
		if e.Country != nil && *e.Country != "" {
			country = *e.Country
		}
		key := groupKey{date: e.Date, country: country, category: *e.Category}

		g, ok := groups[key]
		if !ok {
			g = &groupAccum{goldMin: math.NaN()}
			groups[key] = g
		}
		g.count++

		if e.AvgTone != nil {
			g.toneSum += *e.AvgTone
			g.toneN++
			if *e.AvgTone < 0 {
				g.negativeTone++
			}
		}
		if e.Goldstein != nil {
			g.goldSum += *e.Goldstein
			g.goldN++
			if math.IsNaN(g.goldMin) || *e.Goldstein < g.goldMin {
				g.goldMin = *e.Goldstein
			}
		}
		// Missing quad class counts as zero intensity.
		if e.QuadClass != nil {
			g.quadSum += clamp(float64(*e.QuadClass)/4.0, 0, 1)
		}
	}

	metrics := make([]database.DailyMetric, 0, len(groups))
	for key, g := range groups {
		m := database.DailyMetric{
			Date:       key.date,
			Country:    key.country,
			Category:   key.category,
			EventCount: g.count,
		}

		var meanTone *float64
		if g.toneN > 0 {
			v := g.toneSum / float64(g.toneN)
			meanTone = &v
		}
		m.AvgTone = meanTone

		if g.goldN > 0 {
			v := g.goldSum / float64(g.goldN)
			m.MeanGoldstein = &v
			min := g.goldMin
			m.MinGoldstein = &min
		}

		pctNegative := float64(g.negativeTone) / float64(g.count)
		m.PctNegativeTone = &pctNegative

		quadIntensity := g.quadSum / float64(g.count)
		severity := SeverityIndex(m.MinGoldstein, meanTone, pctNegative, quadIntensity)
		m.SeverityIndex = &severity

		metrics = append(metrics, m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		a, b := metrics[i], metrics[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Date < b.Date
	})
	return metrics
}

// SeverityIndex computes the 0-100 severity composite:
//   - neg goldstein: max(0, -min_goldstein)/10 capped at 1; 0.5 neutral when
//     goldstein is missing
//   - neg tone: -mean_tone/100 capped at 1 when mean tone is negative,
//     otherwise the fraction of negative-tone events
//   - quad intensity: mean of quad_class/4, already in [0,1]
//
// The clamps guarantee the result lands in [0,100].
func SeverityIndex(minGoldstein, meanTone *float64, pctNegativeTone, quadIntensity float64) float64 {
	negG := 0.5
	if minGoldstein != nil {
		negG = clamp(math.Max(0, -*minGoldstein)/10.0, 0, 1)
	}

	negT := pctNegativeTone
	if meanTone != nil && *meanTone < 0 {
		negT = clamp(-*meanTone/100.0, 0, 1)
	}

	q := clamp(quadIntensity, 0, 1)

	raw := 100.0 * (sevWeightGoldstein*negG + sevWeightTone*negT + sevWeightQuad*q)
	return math.Round(raw*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
