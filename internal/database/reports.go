package database

import "database/sql"

// UpsertReport records a pipeline run for a date, replacing any earlier run
// report for that date.
func (db *DB) UpsertReport(runDate string, eventCount, metricCount, spikeCount, snapshotCount int) error {
	_, err := db.q.Exec(
		`INSERT INTO run_reports (run_date, event_count, metric_count, spike_count, snapshot_count, generated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(run_date) DO UPDATE SET
			event_count = excluded.event_count,
			metric_count = excluded.metric_count,
			spike_count = excluded.spike_count,
			snapshot_count = excluded.snapshot_count,
			generated_at = excluded.generated_at`,
		runDate, eventCount, metricCount, spikeCount, snapshotCount,
	)
	return err
}

// GetLastRunDate returns the run date of the most recent pipeline run, or ""
// if none.
func (db *DB) GetLastRunDate() (string, error) {
	var date string
	err := db.q.QueryRow("SELECT run_date FROM run_reports ORDER BY run_date DESC LIMIT 1").Scan(&date)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return date, nil
}

// GetStats collects aggregate counts for the status command.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM events", &stats.TotalEvents},
		{"SELECT COUNT(*) FROM daily_metrics", &stats.MetricRows},
		{"SELECT COUNT(*) FROM daily_metrics WHERE baseline_quality = 'ok'", &stats.BaselineOkRows},
		{"SELECT COUNT(*) FROM daily_metrics WHERE risk_score IS NOT NULL", &stats.ScoredRows},
		{"SELECT COUNT(*) FROM spikes", &stats.Spikes},
		{"SELECT COUNT(*) FROM risk_snapshots", &stats.Snapshots},
		{"SELECT COUNT(DISTINCT date) FROM daily_metrics", &stats.DatesCovered},
	}

	for _, q := range queries {
		if err := db.q.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
