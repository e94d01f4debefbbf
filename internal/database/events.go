package database

import "database/sql"

// UpsertEvent inserts an event or overwrites the existing row with the same
// id. Re-importing the same export never duplicates events.
func (db *DB) UpsertEvent(e Event) error {
	_, err := db.q.Exec(
		`INSERT INTO events (id, ts, date, country, admin1, lat, lon, event_code, quad_class, goldstein, avg_tone, source_url, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ts = excluded.ts,
			date = excluded.date,
			country = excluded.country,
			admin1 = excluded.admin1,
			lat = excluded.lat,
			lon = excluded.lon,
			event_code = excluded.event_code,
			quad_class = excluded.quad_class,
			goldstein = excluded.goldstein,
			avg_tone = excluded.avg_tone,
			source_url = excluded.source_url,
			category = excluded.category`,
		e.ID, e.TS, e.Date, e.Country, e.Admin1, e.Lat, e.Lon,
		e.EventCode, e.QuadClass, e.Goldstein, e.AvgTone, e.SourceURL, e.Category,
	)
	return err
}

// GetCategorizedEvents returns all events with a non-null category, the
// input set for aggregation.
func (db *DB) GetCategorizedEvents() ([]Event, error) {
	rows, err := db.q.Query(
		`SELECT id, ts, date, country, admin1, lat, lon, event_code, quad_class, goldstein, avg_tone, source_url, category
		FROM events WHERE category IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetEvidenceEventIDs returns the top event ids for (date, country, category)
// ranked by absolute tone magnitude descending, events without a tone last.
func (db *DB) GetEvidenceEventIDs(date, country, category string, limit int) ([]string, error) {
	rows, err := db.q.Query(
		`SELECT id FROM events
		WHERE date = ? AND country = ? AND category = ?
		ORDER BY avg_tone IS NULL, ABS(avg_tone) DESC
		LIMIT ?`,
		date, country, category, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountEvents returns the total number of stored events.
func (db *DB) CountEvents() (int, error) {
	var n int
	err := db.q.QueryRow("SELECT COUNT(*) FROM events").Scan(&n)
	return n, err
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Date, &e.Country, &e.Admin1,
			&e.Lat, &e.Lon, &e.EventCode, &e.QuadClass, &e.Goldstein,
			&e.AvgTone, &e.SourceURL, &e.Category); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
