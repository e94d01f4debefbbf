package database

import (
	"database/sql"
	"encoding/json"
)

const spikeColumns = `id, date, country, category, z_score, z_used, delta,
	rolling_center, rolling_dispersion, COALESCE(baseline_quality, ''),
	baseline_method, baseline_window_days, evidence_event_ids,
	COALESCE(computed_at, ''), pipeline_version`

// UpsertSpike inserts a spike or overwrites all non-key fields of the row
// with the same natural key. The composite key makes repeated runs over the
// same data land on one row; the storage layer owns the atomicity.
func (db *DB) UpsertSpike(s Spike) error {
	evidence, err := json.Marshal(s.EvidenceEventIDs)
	if err != nil {
		return err
	}

	_, err = db.q.Exec(
		`INSERT INTO spikes (date, country, category, z_score, z_used, delta,
			rolling_center, rolling_dispersion, baseline_quality,
			baseline_method, baseline_window_days, evidence_event_ids,
			computed_at, pipeline_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, country, category, baseline_method, baseline_window_days, pipeline_version)
		DO UPDATE SET
			z_score = excluded.z_score,
			z_used = excluded.z_used,
			delta = excluded.delta,
			rolling_center = excluded.rolling_center,
			rolling_dispersion = excluded.rolling_dispersion,
			baseline_quality = excluded.baseline_quality,
			evidence_event_ids = excluded.evidence_event_ids,
			computed_at = excluded.computed_at`,
		s.Date, s.Country, s.Category, s.ZScore, s.ZUsed, s.Delta,
		s.RollingCenter, s.RollingDispersion, s.BaselineQuality,
		s.BaselineMethod, s.BaselineWindowDays, string(evidence),
		s.ComputedAt, s.PipelineVersion,
	)
	return err
}

// GetRecentSpikes returns spikes ordered by recency then magnitude.
func (db *DB) GetRecentSpikes(limit int) ([]Spike, error) {
	rows, err := db.q.Query(
		`SELECT `+spikeColumns+` FROM spikes
		ORDER BY date DESC, z_used DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSpikes(rows)
}

// GetSpikesForDate returns spikes for one date ordered by magnitude.
func (db *DB) GetSpikesForDate(date string) ([]Spike, error) {
	rows, err := db.q.Query(
		`SELECT `+spikeColumns+` FROM spikes
		WHERE date = ? ORDER BY z_used DESC`, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSpikes(rows)
}

// CountSpikes returns the total number of spike rows.
func (db *DB) CountSpikes() (int, error) {
	var n int
	err := db.q.QueryRow("SELECT COUNT(*) FROM spikes").Scan(&n)
	return n, err
}

func scanSpikes(rows *sql.Rows) ([]Spike, error) {
	var spikes []Spike
	for rows.Next() {
		var s Spike
		var evidence *string
		if err := rows.Scan(&s.ID, &s.Date, &s.Country, &s.Category,
			&s.ZScore, &s.ZUsed, &s.Delta, &s.RollingCenter,
			&s.RollingDispersion, &s.BaselineQuality, &s.BaselineMethod,
			&s.BaselineWindowDays, &evidence, &s.ComputedAt,
			&s.PipelineVersion); err != nil {
			return nil, err
		}
		if evidence != nil && *evidence != "" {
			_ = json.Unmarshal([]byte(*evidence), &s.EvidenceEventIDs)
		}
		spikes = append(spikes, s)
	}
	return spikes, rows.Err()
}
