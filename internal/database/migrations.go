package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    ts TEXT NOT NULL,
    date TEXT NOT NULL,
    country TEXT,
    admin1 TEXT,
    lat REAL,
    lon REAL,
    event_code TEXT,
    quad_class INTEGER,
    goldstein REAL,
    avg_tone REAL,
    source_url TEXT,
    category TEXT
);

CREATE TABLE IF NOT EXISTS daily_metrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    country TEXT NOT NULL,
    category TEXT NOT NULL,
    event_count INTEGER NOT NULL,
    avg_tone REAL,
    mean_goldstein REAL,
    min_goldstein REAL,
    pct_negative_tone REAL,
    severity_index REAL,
    severity_rolling_center REAL,
    severity_rolling_dispersion REAL,
    z_severity REAL,
    rolling_center REAL,
    rolling_dispersion REAL,
    baseline_quality TEXT,
    baseline_method TEXT,
    baseline_window_days INTEGER,
    z_score REAL,
    risk_score REAL,
    reasons_json TEXT,
    computed_at TEXT,
    pipeline_version TEXT,
    UNIQUE(date, country, category)
);

CREATE TABLE IF NOT EXISTS spikes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    country TEXT NOT NULL,
    category TEXT NOT NULL,
    z_score REAL NOT NULL,
    z_used REAL NOT NULL,
    delta REAL,
    rolling_center REAL,
    rolling_dispersion REAL,
    baseline_quality TEXT,
    baseline_method TEXT NOT NULL,
    baseline_window_days INTEGER NOT NULL,
    evidence_event_ids TEXT,
    computed_at TEXT,
    pipeline_version TEXT NOT NULL,
    UNIQUE(date, country, category, baseline_method, baseline_window_days, pipeline_version)
);

CREATE TABLE IF NOT EXISTS risk_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    snapshot_date TEXT NOT NULL,
    country TEXT NOT NULL,
    risk_score REAL,
    severity_index REAL,
    event_count INTEGER DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now')),
    UNIQUE(snapshot_date, country)
);

CREATE TABLE IF NOT EXISTS run_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_date TEXT UNIQUE NOT NULL,
    generated_at TEXT DEFAULT (datetime('now')),
    event_count INTEGER DEFAULT 0,
    metric_count INTEGER DEFAULT 0,
    spike_count INTEGER DEFAULT 0,
    snapshot_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
CREATE INDEX IF NOT EXISTS idx_events_country ON events(country);
CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
CREATE INDEX IF NOT EXISTS idx_events_group ON events(date, country, category);
CREATE INDEX IF NOT EXISTS idx_daily_metrics_date ON daily_metrics(date);
CREATE INDEX IF NOT EXISTS idx_daily_metrics_series ON daily_metrics(country, category, date);
CREATE INDEX IF NOT EXISTS idx_spikes_date ON spikes(date);
CREATE INDEX IF NOT EXISTS idx_risk_snapshots_date ON risk_snapshots(snapshot_date);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
