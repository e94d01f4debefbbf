package ingest

import (
	"os"
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

func writeTSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.tsv")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing tsv: %v", err)
	}
	return path
}

func TestImportFile(t *testing.T) {
	db := openTestDB(t)
	path := writeTSV(t,
		"id\tdate\tcountry\tcategory\tavg_tone\tgoldstein\tquad_class",
		"ev-1\t2026-08-14\tDE\tCivil Unrest\t-4.2\t-3.0\t3",
		"ev-2\t2026-08-14\tFR\tArmed Conflict\t\t\t",
	)

	result, err := New(db).ImportFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 0 {
		t.Fatalf("expected 2 imported, got %+v", result)
	}

	events, err := db.GetCategorizedEvents()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	var first database.Event
	for _, e := range events {
		if e.ID == "ev-1" {
			first = e
		}
	}
	if first.AvgTone == nil || *first.AvgTone != -4.2 {
		t.Errorf("expected avg_tone -4.2, got %v", first.AvgTone)
	}
	if first.QuadClass == nil || *first.QuadClass != 3 {
		t.Errorf("expected quad_class 3, got %v", first.QuadClass)
	}
	if first.TS != "2026-08-14T00:00:00Z" {
		t.Errorf("expected ts defaulted from date, got %q", first.TS)
	}
}

func TestImportSkipsRowsMissingIdentity(t *testing.T) {
	db := openTestDB(t)
	path := writeTSV(t,
		"id\tdate\tcountry",
		"\t2026-08-14\tDE",
		"ev-1\t\tDE",
		"ev-2\t2026-08-14\tDE",
	)

	result, err := New(db).ImportFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 2 {
		t.Errorf("expected 1 imported and 2 skipped, got %+v", result)
	}
}

func TestImportDerivesCategory(t *testing.T) {
	db := openTestDB(t)
	path := writeTSV(t,
		"id\tdate\tevent_code\tquad_class",
		"conflict\t2026-08-14\t190\t",
		"protest\t2026-08-14\t141\t",
		"quad-only\t2026-08-14\t\t4",
		"infra\t2026-08-14\t192\t",
	)

	if _, err := New(db).ImportFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, _ := db.GetCategorizedEvents()
	want := map[string]string{
		"conflict":  "Armed Conflict",
		"protest":   "Civil Unrest",
		"quad-only": "Crime / Terror",
		"infra":     "Infrastructure / Energy",
	}
	for _, e := range events {
		if e.Category == nil || *e.Category != want[e.ID] {
			t.Errorf("%s: expected category %q, got %v", e.ID, want[e.ID], e.Category)
		}
	}
}

func TestImportIdempotent(t *testing.T) {
	db := openTestDB(t)
	path := writeTSV(t,
		"id\tdate\tcountry",
		"ev-1\t2026-08-14\tDE",
	)

	importer := New(db)
	if _, err := importer.ImportFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := importer.ImportFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, _ := db.CountEvents()
	if n != 1 {
		t.Errorf("expected 1 event after re-import, got %d", n)
	}
}

func TestImportRejectsMissingColumns(t *testing.T) {
	db := openTestDB(t)
	path := writeTSV(t,
		"id\tcountry",
		"ev-1\tDE",
	)

	if _, err := New(db).ImportFile(path); err == nil {
		t.Fatal("expected error for missing date column")
	}
}

func TestImportEmptyFile(t *testing.T) {
	db := openTestDB(t)
	path := writeTSV(t)

	result, err := New(db).ImportFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
