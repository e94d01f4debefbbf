// Package ingest imports normalized event exports into the events table.
// The exchange format is a tab-separated file with a header line; rows are
// upserted by event id, so re-importing a file never duplicates events.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/georisk/georisk/internal/database"
	"github.com/georisk/georisk/internal/taxonomy"
)

// Result summarizes an import.
type Result struct {
	Imported int
	Skipped  int
}

// Importer loads event rows into the database.
type Importer struct {
	db *database.DB
}

// New creates an Importer.
func New(db *database.DB) *Importer {
	return &Importer{db: db}
}

// ImportFile reads a TSV event export and upserts its rows. The whole file
// is applied in one transaction. Rows missing an id or date are skipped and
// counted; rows without a category get one derived from their event code
// and quad class.
func (imp *Importer) ImportFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening events file: %w", err)
	}
	defer f.Close()

	result, err := imp.importReader(f)
	if err != nil {
		return nil, err
	}

	log.Printf("imported %d events (%d skipped) from %s", result.Imported, result.Skipped, path)
	return result, nil
}

func (imp *Importer) importReader(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"id", "date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("events file missing %q column", required)
		}
	}

	result := &Result{}
	err = imp.db.InTransaction(func(tx *database.DB) error {
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading events file: %w", err)
			}

			event, ok := parseRecord(record, cols)
			if !ok {
				result.Skipped++
				continue
			}
			if err := tx.UpsertEvent(event); err != nil {
				return fmt.Errorf("upserting event %s: %w", event.ID, err)
			}
			result.Imported++
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parseRecord converts one TSV record into an Event. Returns false when the
// row lacks the identity fields.
func parseRecord(record []string, cols map[string]int) (database.Event, bool) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	id := get("id")
	date := get("date")
	if id == "" || date == "" {
		return database.Event{}, false
	}

	ts := get("ts")
	if ts == "" {
		ts = date + "T00:00:00Z"
	}

	e := database.Event{
		ID:        id,
		TS:        ts,
		Date:      date,
		Country:   strPtr(get("country")),
		Admin1:    strPtr(get("admin1")),
		Lat:       floatPtr(get("lat")),
		Lon:       floatPtr(get("lon")),
		EventCode: strPtr(get("event_code")),
		QuadClass: intPtr(get("quad_class")),
		Goldstein: floatPtr(get("goldstein")),
		AvgTone:   floatPtr(get("avg_tone")),
		SourceURL: strPtr(get("source_url")),
	}

	category := get("category")
	if category == "" {
		code := ""
		if e.EventCode != nil {
			code = *e.EventCode
		}
		category = string(taxonomy.Classify(code, e.QuadClass))
	}
	e.Category = &category

	return e, true
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func intPtr(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
