// Package spike detects statistically significant deviations of daily event
// counts from their rolling baselines and records them with evidence.
package spike

import (
	"log"
	"time"

	"github.com/georisk/georisk/internal/database"
	"github.com/georisk/georisk/internal/risk"
)

// Detector flags anomalous metric rows and upserts spike records.
type Detector struct {
	db            *database.DB
	zThreshold    float64
	mode          string
	evidenceCount int
	version       string
}

// NewDetector creates a spike detector.
func NewDetector(db *database.DB, zThreshold float64, mode string, evidenceCount int, version string) *Detector {
	return &Detector{
		db:            db,
		zThreshold:    zThreshold,
		mode:          mode,
		evidenceCount: evidenceCount,
		version:       version,
	}
}

// Run examines every metric row with a trusted baseline and a defined
// z-score, and upserts a spike for each row whose anomaly magnitude exceeds
// the threshold. Detection does not require risk scoring to have run.
// Returns the number of spikes upserted.
func (d *Detector) Run() (int, error) {
	candidates, err := d.db.GetSpikeCandidates()
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		log.Println("no spike candidates")
		return 0, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	count := 0

	for _, m := range candidates {
		z := 0.0
		if m.ZScore != nil {
			z = *m.ZScore
		}
		zUsed := risk.ZUsed(z, d.mode)
		if zUsed <= d.zThreshold {
			continue
		}

		evidence, err := d.db.GetEvidenceEventIDs(m.Date, m.Country, m.Category, d.evidenceCount)
		if err != nil {
			return count, err
		}

		var delta *float64
		if m.RollingCenter != nil {
			v := float64(m.EventCount) - *m.RollingCenter
			delta = &v
		}

		s := database.Spike{
			Date:               m.Date,
			Country:            m.Country,
			Category:           m.Category,
			ZScore:             z,
			ZUsed:              zUsed,
			Delta:              delta,
			RollingCenter:      m.RollingCenter,
			RollingDispersion:  m.RollingDispersion,
			BaselineQuality:    m.BaselineQuality,
			BaselineMethod:     m.BaselineMethod,
			BaselineWindowDays: m.BaselineWindowDays,
			EvidenceEventIDs:   evidence,
			ComputedAt:         now,
			PipelineVersion:    d.version,
		}
		if err := d.db.UpsertSpike(s); err != nil {
			return count, err
		}
		count++
	}

	log.Printf("spikes upserted: %d (threshold=%.1f, mode=%s)", count, d.zThreshold, d.mode)
	return count, nil
}
