// Package pipeline orchestrates the batch analytics run:
// aggregate -> baselines -> {risk scoring, spike detection} -> snapshot.
package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/georisk/georisk/internal/aggregate"
	"github.com/georisk/georisk/internal/baseline"
	"github.com/georisk/georisk/internal/config"
	"github.com/georisk/georisk/internal/database"
	"github.com/georisk/georisk/internal/risk"
	"github.com/georisk/georisk/internal/snapshot"
	"github.com/georisk/georisk/internal/spike"
)

// Settings is the immutable per-run configuration for every stage. Stages
// never read ambient globals, so a run is reproducible from its settings.
type Settings struct {
	Method        string
	WindowDays    int
	MinPeriods    int
	ZThreshold    float64
	Mode          string
	EvidenceCount int
	Version       string
}

// SettingsFromConfig extracts pipeline settings from the loaded config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Method:        cfg.Baseline.Method,
		WindowDays:    cfg.Baseline.WindowDays,
		MinPeriods:    cfg.Baseline.MinPeriods,
		ZThreshold:    cfg.Spike.ZThreshold,
		Mode:          cfg.Spike.Mode,
		EvidenceCount: cfg.Spike.EvidenceCount,
		Version:       cfg.Pipeline.Version,
	}
}

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	RunDate string
	Steps   []StepResult
}

// Pipeline runs the five analytics stages as one batch.
type Pipeline struct {
	db       *database.DB
	settings Settings
}

// New creates a pipeline.
func New(db *database.DB, settings Settings) *Pipeline {
	return &Pipeline{db: db, settings: settings}
}

// Run executes all stages inside a single transaction: either every stage's
// writes become visible together or none do. Later stages read the earlier
// stages' writes through the same transaction, so no stage ever observes a
// partially updated table.
func (p *Pipeline) Run(today time.Time) *Result {
	runDate := today.Format("2006-01-02")
	r := &Result{RunDate: runDate}

	err := p.db.InTransaction(func(tx *database.DB) error {
		var metricCount, spikeCount, snapshotCount int

		log.Println("Step 1/5: Aggregating daily metrics...")
		metricCount, err := aggregate.New(tx).Run()
		if err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Aggregate", Err: err})
			return err
		}
		r.Steps = append(r.Steps, StepResult{
			Name:    "Aggregate",
			Summary: fmt.Sprintf("%d daily metric rows", metricCount),
		})

		log.Println("Step 2/5: Computing rolling baselines...")
		engine := baseline.NewEngine(tx, p.settings.Method, p.settings.WindowDays, p.settings.MinPeriods, p.settings.Version)
		baselined, err := engine.ComputeCountBaselines()
		if err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Baseline", Err: err})
			return err
		}
		if _, err := engine.ComputeSeverityBaselines(); err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Baseline", Err: err})
			return err
		}
		r.Steps = append(r.Steps, StepResult{
			Name:    "Baseline",
			Summary: fmt.Sprintf("%d rows baselined (%s, window %dd)", baselined, p.settings.Method, p.settings.WindowDays),
		})

		log.Println("Step 3/5: Scoring risk...")
		scored, err := risk.NewScorer(tx, p.settings.Mode, p.settings.Version, today).Run()
		if err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Score", Err: err})
			return err
		}
		r.Steps = append(r.Steps, StepResult{
			Name:    "Score",
			Summary: fmt.Sprintf("%d rows scored", scored),
		})

		log.Println("Step 4/5: Detecting spikes...")
		spikeCount, err = spike.NewDetector(tx, p.settings.ZThreshold, p.settings.Mode, p.settings.EvidenceCount, p.settings.Version).Run()
		if err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Detect", Err: err})
			return err
		}
		r.Steps = append(r.Steps, StepResult{
			Name:    "Detect",
			Summary: fmt.Sprintf("%d spikes upserted", spikeCount),
		})

		log.Println("Step 5/5: Writing risk snapshots...")
		snapshotCount, err = snapshot.New(tx).Run()
		if err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Snapshot", Err: err})
			return err
		}
		r.Steps = append(r.Steps, StepResult{
			Name:    "Snapshot",
			Summary: fmt.Sprintf("%d snapshot rows", snapshotCount),
		})

		eventCount, err := tx.CountEvents()
		if err != nil {
			return err
		}
		return tx.UpsertReport(runDate, eventCount, metricCount, spikeCount, snapshotCount)
	})
	if err != nil {
		// Step-level errors are already recorded; only surface wrapping
		// failures (begin/commit) that produced no step.
		if len(r.Steps) == 0 || r.Steps[len(r.Steps)-1].Err == nil {
			r.Steps = append(r.Steps, StepResult{Name: "Transaction", Err: err})
		}
		return r
	}

	return r
}
