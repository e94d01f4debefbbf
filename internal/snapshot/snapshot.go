// Package snapshot rolls up the most recent day's metrics into one row per
// country for longitudinal monitoring.
package snapshot

import (
	"log"
	"sort"
	"time"

	"github.com/georisk/georisk/internal/database"
)

// Appender writes per-country risk snapshots for the latest metric date.
type Appender struct {
	db *database.DB
}

// New creates an Appender.
func New(db *database.DB) *Appender {
	return &Appender{db: db}
}

// Run finds the most recent date in daily_metrics and replaces that date's
// snapshots with per-country rollups: max risk score and max severity index
// ignoring nulls, summed event count. Returns the number of rows written;
// an empty metrics table writes nothing.
func (a *Appender) Run() (int, error) {
	latest, err := a.db.GetLatestMetricDate()
	if err != nil {
		return 0, err
	}
	if latest == "" {
		log.Println("no daily metrics; skipping risk snapshots")
		return 0, nil
	}

	metrics, err := a.db.GetMetricsForDate(latest)
	if err != nil {
		return 0, err
	}
	if len(metrics) == 0 {
		return 0, nil
	}

	rollups := Rollup(latest, metrics)
	if err := a.db.ReplaceSnapshotsForDate(latest, rollups); err != nil {
		return 0, err
	}

	log.Printf("risk snapshots written: %d rows for %s", len(rollups), latest)
	return len(rollups), nil
}

// Rollup groups one date's metrics by country and computes the snapshot
// aggregates.
func Rollup(date string, metrics []database.DailyMetric) []database.RiskSnapshot {
	byCountry := make(map[string]*database.RiskSnapshot)
	now := time.Now().UTC().Format(time.RFC3339)

	for _, m := range metrics {
		s, ok := byCountry[m.Country]
		if !ok {
			s = &database.RiskSnapshot{
				SnapshotDate: date,
				Country:      m.Country,
				CreatedAt:    now,
			}
			byCountry[m.Country] = s
		}

		if m.RiskScore != nil && (s.RiskScore == nil || *m.RiskScore > *s.RiskScore) {
			v := *m.RiskScore
			s.RiskScore = &v
		}
		if m.SeverityIndex != nil && (s.SeverityIndex == nil || *m.SeverityIndex > *s.SeverityIndex) {
			v := *m.SeverityIndex
			s.SeverityIndex = &v
		}
		s.EventCount += m.EventCount
	}

	rollups := make([]database.RiskSnapshot, 0, len(byCountry))
	for _, s := range byCountry {
		rollups = append(rollups, *s)
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Country < rollups[j].Country })
	return rollups
}
