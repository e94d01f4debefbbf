package database

import "database/sql"

// ReplaceSnapshotsForDate deletes any snapshots for the date and inserts the
// given rows. Re-running the same date replaces rather than accumulates.
func (db *DB) ReplaceSnapshotsForDate(date string, snapshots []RiskSnapshot) error {
	if _, err := db.q.Exec("DELETE FROM risk_snapshots WHERE snapshot_date = ?", date); err != nil {
		return err
	}
	for _, s := range snapshots {
		_, err := db.q.Exec(
			`INSERT INTO risk_snapshots (snapshot_date, country, risk_score, severity_index, event_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.SnapshotDate, s.Country, s.RiskScore, s.SeverityIndex, s.EventCount, s.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetSnapshotsForDate returns snapshots for one date ordered by risk score
// descending, unscored countries last.
func (db *DB) GetSnapshotsForDate(date string) ([]RiskSnapshot, error) {
	rows, err := db.q.Query(
		`SELECT id, snapshot_date, country, risk_score, severity_index, event_count, COALESCE(created_at, '')
		FROM risk_snapshots WHERE snapshot_date = ?
		ORDER BY risk_score IS NULL, risk_score DESC`, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// GetSnapshotHistory returns the most recent snapshots across all dates.
func (db *DB) GetSnapshotHistory(limit int) ([]RiskSnapshot, error) {
	rows, err := db.q.Query(
		`SELECT id, snapshot_date, country, risk_score, severity_index, event_count, COALESCE(created_at, '')
		FROM risk_snapshots
		ORDER BY snapshot_date DESC, risk_score IS NULL, risk_score DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// GetSnapshotDates returns the distinct snapshot dates, newest first.
func (db *DB) GetSnapshotDates() ([]string, error) {
	rows, err := db.q.Query("SELECT DISTINCT snapshot_date FROM risk_snapshots ORDER BY snapshot_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func scanSnapshots(rows *sql.Rows) ([]RiskSnapshot, error) {
	var snapshots []RiskSnapshot
	for rows.Next() {
		var s RiskSnapshot
		if err := rows.Scan(&s.ID, &s.SnapshotDate, &s.Country, &s.RiskScore,
			&s.SeverityIndex, &s.EventCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
