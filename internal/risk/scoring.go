// Package risk turns baselined daily metrics into bounded, explainable risk
// scores. Every score is fully reconstructible from its reasons payload; no
// opaque model output is involved.
package risk

import (
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/georisk/georisk/internal/baseline"
	"github.com/georisk/georisk/internal/database"
	"github.com/georisk/georisk/internal/taxonomy"
)

// Spike modes: one-sided counts only upward anomalies, two-sided either
// direction.
const (
	ModeOneSided = "one_sided"
	ModeTwoSided = "two_sided"
)

// ZUsed returns the anomaly magnitude used for scoring and spike detection:
// max(0, z) under one-sided mode, |z| under two-sided mode.
func ZUsed(z float64, mode string) float64 {
	if mode == ModeTwoSided {
		return math.Abs(z)
	}
	return math.Max(0, z)
}

// Reasons is the structured explanation stored alongside each risk score.
// Keys are stable so downstream consumers can parse it without schema
// negotiation.
type Reasons struct {
	BaseComponent      float64  `json:"base_component"`
	RecencyComponent   float64  `json:"recency_component"`
	AnomalyComponent   float64  `json:"anomaly_component"`
	SeverityComponent  float64  `json:"severity_component"`
	BaseWeight         float64  `json:"base_weight"`
	RecencyMult        float64  `json:"recency_mult"`
	SeverityMultiplier float64  `json:"severity_multiplier"`
	SeverityIndex      *float64 `json:"severity_index"`
	ZCount             float64  `json:"z_count"`
	ZSeverity          *float64 `json:"z_severity"`
	ZScore             float64  `json:"z_score"`
	ZUsed              float64  `json:"z_used"`
	SpikeBonus         float64  `json:"spike_bonus"`
	BaselineMethod     string   `json:"baseline_method"`
	BaselineWindowDays int      `json:"baseline_window_days"`
}

// notReady is the explanation for rows whose baseline is not trusted yet.
type notReady struct {
	Note            string `json:"note"`
	BaselineQuality string `json:"baseline_quality"`
}

// Scorer computes risk scores over stored daily metrics.
type Scorer struct {
	db      *database.DB
	mode    string
	version string
	today   time.Time
}

// NewScorer creates a risk scorer. today anchors the recency component so
// runs are reproducible in tests.
func NewScorer(db *database.DB, mode, version string, today time.Time) *Scorer {
	return &Scorer{db: db, mode: mode, version: version, today: today}
}

// Run scores every metric row. Rows without a trusted baseline get a null
// score and a "baseline not ready" explanation. Returns the number of rows
// updated.
func (s *Scorer) Run() (int, error) {
	metrics, err := s.db.GetMetricSeries()
	if err != nil {
		return 0, err
	}
	if len(metrics) == 0 {
		return 0, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updated := 0

	for _, m := range metrics {
		score, payload := Score(m, s.mode, s.today)

		reasonsJSON, err := json.Marshal(payload)
		if err != nil {
			return updated, err
		}
		if err := s.db.UpdateMetricRisk(m.ID, score, string(reasonsJSON), now, s.version); err != nil {
			return updated, err
		}
		updated++
	}

	log.Printf("risk scores updated: %d rows (mode=%s)", updated, s.mode)
	return updated, nil
}

// Score computes the risk score and explanation for a single metric row.
// The returned payload is either Reasons or the not-ready note, both
// JSON-marshalable with stable keys.
func Score(m database.DailyMetric, mode string, today time.Time) (*float64, any) {
	if m.BaselineQuality != baseline.QualityOK {
		quality := m.BaselineQuality
		if quality == "" {
			quality = baseline.QualityLow
		}
		return nil, notReady{Note: "baseline not ready", BaselineQuality: quality}
	}

	z := 0.0
	if m.ZScore != nil {
		z = *m.ZScore
	}
	zUsed := ZUsed(z, mode)

	baseComponent := taxonomy.BaseWeight(taxonomy.Category(m.Category))
	recencyComponent := recencyMultiplier(m.Date, today)

	anomalyComponent := 0.0
	if zUsed > 1 {
		anomalyComponent = math.Min(25, (zUsed-1)*10)
	}

	severityIndex := 0.0
	if m.SeverityIndex != nil {
		severityIndex = *m.SeverityIndex
	}
	severityMultiplier := 0.7 + 0.3*(severityIndex/100.0)

	raw := baseComponent*recencyComponent*severityMultiplier + anomalyComponent
	score := math.Min(100.0, round(raw, 1))

	var sevIdx *float64
	if m.SeverityIndex != nil {
		v := round(severityIndex, 2)
		sevIdx = &v
	}
	var zSev *float64
	if m.ZSeverity != nil {
		v := round(*m.ZSeverity, 2)
		zSev = &v
	}

	method := m.BaselineMethod
	if method == "" {
		method = baseline.MethodRobust
	}

	reasons := Reasons{
		BaseComponent:      round(baseComponent, 1),
		RecencyComponent:   recencyComponent,
		AnomalyComponent:   round(anomalyComponent, 1),
		SeverityComponent:  round(severityMultiplier, 3),
		BaseWeight:         round(baseComponent, 1),
		RecencyMult:        recencyComponent,
		SeverityMultiplier: round(severityMultiplier, 3),
		SeverityIndex:      sevIdx,
		ZCount:             round(z, 2),
		ZSeverity:          zSev,
		ZScore:             round(z, 2),
		ZUsed:              round(zUsed, 2),
		SpikeBonus:         round(anomalyComponent, 1),
		BaselineMethod:     method,
		BaselineWindowDays: m.BaselineWindowDays,
	}
	return &score, reasons
}

// recencyMultiplier weights recent dates higher: 1.5 within 7 days of today,
// 1.2 within 14, 1.0 beyond.
func recencyMultiplier(date string, today time.Time) float64 {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 1.0
	}
	daysAgo := int(today.Truncate(24*time.Hour).Sub(d).Hours() / 24)
	switch {
	case daysAgo <= 7:
		return 1.5
	case daysAgo <= 14:
		return 1.2
	default:
		return 1.0
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
