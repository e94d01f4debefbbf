package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/georisk/georisk/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func fp(v float64) *float64 { return &v }

func TestRollupPerCountry(t *testing.T) {
	metrics := []database.DailyMetric{
		{Date: "2026-08-14", Country: "DE", Category: "Civil Unrest", EventCount: 4, RiskScore: fp(30), SeverityIndex: fp(40)},
		{Date: "2026-08-14", Country: "DE", Category: "Armed Conflict", EventCount: 2, RiskScore: fp(55), SeverityIndex: fp(25)},
		{Date: "2026-08-14", Country: "FR", Category: "Civil Unrest", EventCount: 1, RiskScore: fp(12), SeverityIndex: fp(10)},
	}

	rollups := Rollup("2026-08-14", metrics)
	if len(rollups) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(rollups))
	}

	de := rollups[0]
	if de.Country != "DE" {
		t.Fatalf("expected DE first, got %s", de.Country)
	}
	if de.RiskScore == nil || *de.RiskScore != 55 {
		t.Errorf("expected max risk 55, got %v", de.RiskScore)
	}
	if de.SeverityIndex == nil || *de.SeverityIndex != 40 {
		t.Errorf("expected max severity 40, got %v", de.SeverityIndex)
	}
	if de.EventCount != 6 {
		t.Errorf("expected summed count 6, got %d", de.EventCount)
	}
}

func TestRollupIgnoresNulls(t *testing.T) {
	metrics := []database.DailyMetric{
		{Date: "2026-08-14", Country: "DE", Category: "Civil Unrest", EventCount: 3},
		{Date: "2026-08-14", Country: "DE", Category: "Armed Conflict", EventCount: 1, RiskScore: fp(20)},
	}

	rollups := Rollup("2026-08-14", metrics)
	if rollups[0].RiskScore == nil || *rollups[0].RiskScore != 20 {
		t.Errorf("expected the null score skipped, got %v", rollups[0].RiskScore)
	}
	if rollups[0].EventCount != 4 {
		t.Errorf("expected count 4 including unscored rows, got %d", rollups[0].EventCount)
	}
}

func TestRollupAllNull(t *testing.T) {
	metrics := []database.DailyMetric{
		{Date: "2026-08-14", Country: "DE", Category: "Civil Unrest", EventCount: 3},
	}
	rollups := Rollup("2026-08-14", metrics)
	if rollups[0].RiskScore != nil || rollups[0].SeverityIndex != nil {
		t.Errorf("expected nil aggregates when every input is null, got %+v", rollups[0])
	}
}

func TestRunWritesLatestDateOnly(t *testing.T) {
	db := openTestDB(t)
	if err := db.ReplaceDailyMetrics([]database.DailyMetric{
		{Date: "2026-08-13", Country: "DE", Category: "Civil Unrest", EventCount: 2},
		{Date: "2026-08-14", Country: "DE", Category: "Civil Unrest", EventCount: 5},
		{Date: "2026-08-14", Country: "FR", Category: "Civil Unrest", EventCount: 1},
	}); err != nil {
		t.Fatalf("seeding metrics: %v", err)
	}

	n, err := New(db).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 snapshot rows, got %d", n)
	}

	old, _ := db.GetSnapshotsForDate("2026-08-13")
	if len(old) != 0 {
		t.Errorf("expected no snapshots for older dates, got %d", len(old))
	}
	latest, _ := db.GetSnapshotsForDate("2026-08-14")
	if len(latest) != 2 {
		t.Errorf("expected 2 snapshots for the latest date, got %d", len(latest))
	}
}

func TestRunReplacesOnRerun(t *testing.T) {
	db := openTestDB(t)
	if err := db.ReplaceDailyMetrics([]database.DailyMetric{
		{Date: "2026-08-14", Country: "DE", Category: "Civil Unrest", EventCount: 5},
	}); err != nil {
		t.Fatalf("seeding metrics: %v", err)
	}

	appender := New(db)
	if _, err := appender.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := appender.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshots, _ := db.GetSnapshotsForDate("2026-08-14")
	if len(snapshots) != 1 {
		t.Errorf("expected one row after rerun, got %d", len(snapshots))
	}
}

func TestRunEmptyMetrics(t *testing.T) {
	db := openTestDB(t)
	n, err := New(db).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no snapshots without metrics, got %d", n)
	}
}
