package database

import "database/sql"

const metricColumns = `id, date, country, category, event_count, avg_tone,
	mean_goldstein, min_goldstein, pct_negative_tone, severity_index,
	severity_rolling_center, severity_rolling_dispersion, z_severity,
	rolling_center, rolling_dispersion,
	COALESCE(baseline_quality, ''), COALESCE(baseline_method, ''),
	COALESCE(baseline_window_days, 0), z_score,
	risk_score, reasons_json, computed_at, COALESCE(pipeline_version, '')`

// ReplaceDailyMetrics replaces the entire daily_metrics table with the given
// rows. Aggregation is a full recompute, so the old snapshot is dropped
// wholesale rather than merged.
func (db *DB) ReplaceDailyMetrics(metrics []DailyMetric) error {
	if _, err := db.q.Exec("DELETE FROM daily_metrics"); err != nil {
		return err
	}
	for _, m := range metrics {
		_, err := db.q.Exec(
			`INSERT INTO daily_metrics (date, country, category, event_count, avg_tone,
				mean_goldstein, min_goldstein, pct_negative_tone, severity_index)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Date, m.Country, m.Category, m.EventCount, m.AvgTone,
			m.MeanGoldstein, m.MinGoldstein, m.PctNegativeTone, m.SeverityIndex,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetMetricSeries returns all daily metrics ordered by (country, category,
// date), the layout the rolling baseline walks.
func (db *DB) GetMetricSeries() ([]DailyMetric, error) {
	rows, err := db.q.Query(
		`SELECT ` + metricColumns + ` FROM daily_metrics ORDER BY country, category, date`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMetrics(rows)
}

// GetMetricsForDate returns all metrics for one date.
func (db *DB) GetMetricsForDate(date string) ([]DailyMetric, error) {
	rows, err := db.q.Query(
		`SELECT `+metricColumns+` FROM daily_metrics WHERE date = ?`, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMetrics(rows)
}

// GetSpikeCandidates returns metrics with a trusted baseline and a defined
// z-score, the only rows spike detection considers.
func (db *DB) GetSpikeCandidates() ([]DailyMetric, error) {
	rows, err := db.q.Query(
		`SELECT ` + metricColumns + ` FROM daily_metrics
		WHERE baseline_quality = 'ok' AND z_score IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMetrics(rows)
}

// GetLatestMetricDate returns the most recent date present in daily_metrics,
// or "" when the table is empty.
func (db *DB) GetLatestMetricDate() (string, error) {
	var date string
	err := db.q.QueryRow("SELECT date FROM daily_metrics ORDER BY date DESC LIMIT 1").Scan(&date)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return date, nil
}

// GetTopRisks returns the highest-scored metrics for a date, unscored rows
// excluded.
func (db *DB) GetTopRisks(date string, limit int) ([]DailyMetric, error) {
	rows, err := db.q.Query(
		`SELECT `+metricColumns+` FROM daily_metrics
		WHERE date = ? AND risk_score IS NOT NULL
		ORDER BY risk_score DESC LIMIT ?`,
		date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMetrics(rows)
}

// UpdateMetricBaseline writes the count-baseline fields for one metric row.
func (db *DB) UpdateMetricBaseline(id int64, center, dispersion *float64, quality, method string, windowDays int, zScore *float64, computedAt, version string) error {
	_, err := db.q.Exec(
		`UPDATE daily_metrics SET rolling_center = ?, rolling_dispersion = ?,
			baseline_quality = ?, baseline_method = ?, baseline_window_days = ?,
			z_score = ?, computed_at = ?, pipeline_version = ?
		WHERE id = ?`,
		center, dispersion, quality, method, windowDays, zScore, computedAt, version, id,
	)
	return err
}

// UpdateMetricSeverityBaseline writes the severity-baseline fields for one
// metric row.
func (db *DB) UpdateMetricSeverityBaseline(id int64, center, dispersion, zSeverity *float64) error {
	_, err := db.q.Exec(
		`UPDATE daily_metrics SET severity_rolling_center = ?,
			severity_rolling_dispersion = ?, z_severity = ?
		WHERE id = ?`,
		center, dispersion, zSeverity, id,
	)
	return err
}

// UpdateMetricRisk writes the risk score and explanation for one metric row.
func (db *DB) UpdateMetricRisk(id int64, riskScore *float64, reasonsJSON, computedAt, version string) error {
	_, err := db.q.Exec(
		`UPDATE daily_metrics SET risk_score = ?, reasons_json = ?,
			computed_at = ?, pipeline_version = ?
		WHERE id = ?`,
		riskScore, reasonsJSON, computedAt, version, id,
	)
	return err
}

func scanMetrics(rows *sql.Rows) ([]DailyMetric, error) {
	var metrics []DailyMetric
	for rows.Next() {
		var m DailyMetric
		if err := rows.Scan(&m.ID, &m.Date, &m.Country, &m.Category, &m.EventCount,
			&m.AvgTone, &m.MeanGoldstein, &m.MinGoldstein, &m.PctNegativeTone,
			&m.SeverityIndex, &m.SeverityRollingCenter, &m.SeverityRollingDispersion,
			&m.ZSeverity, &m.RollingCenter, &m.RollingDispersion,
			&m.BaselineQuality, &m.BaselineMethod, &m.BaselineWindowDays,
			&m.ZScore, &m.RiskScore, &m.ReasonsJSON, &m.ComputedAt,
			&m.PipelineVersion); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
