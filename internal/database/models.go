package database

// Event is a normalized geotagged event record. Events are read-only to the
// analytics pipeline; they are written only by import.
type Event struct {
	ID        string
	TS        string
	Date      string // YYYY-MM-DD
	Country   *string
	Admin1    *string
	Lat       *float64
	Lon       *float64
	EventCode *string
	QuadClass *int
	Goldstein *float64 // conflict-cooperation scale, roughly -10..+10
	AvgTone   *float64 // coverage sentiment, roughly -100..+100
	SourceURL *string
	Category  *string
}

// DailyMetric is the daily aggregate for one (date, country, category).
// Identity is the natural key; the surrogate id only addresses a row within
// a single run.
type DailyMetric struct {
	ID       int64
	Date     string
	Country  string
	Category string

	EventCount      int
	AvgTone         *float64
	MeanGoldstein   *float64
	MinGoldstein    *float64
	PctNegativeTone *float64
	SeverityIndex   *float64

	SeverityRollingCenter     *float64
	SeverityRollingDispersion *float64
	ZSeverity                 *float64

	RollingCenter      *float64
	RollingDispersion  *float64
	BaselineQuality    string // "", "low" or "ok"
	BaselineMethod     string // "robust" or "standard"
	BaselineWindowDays int
	ZScore             *float64

	RiskScore       *float64
	ReasonsJSON     *string
	ComputedAt      *string
	PipelineVersion string
}

// Spike is a detected anomaly, upserted by
// (date, country, category, baseline_method, baseline_window_days, pipeline_version).
type Spike struct {
	ID       int64
	Date     string
	Country  string
	Category string

	ZScore float64
	ZUsed  float64
	Delta  *float64

	RollingCenter      *float64
	RollingDispersion  *float64
	BaselineQuality    string
	BaselineMethod     string
	BaselineWindowDays int

	EvidenceEventIDs []string
	ComputedAt       string
	PipelineVersion  string
}

// RiskSnapshot is the per-day, per-country rollup kept for history.
type RiskSnapshot struct {
	ID            int64
	SnapshotDate  string
	Country       string
	RiskScore     *float64
	SeverityIndex *float64
	EventCount    int
	CreatedAt     string
}

// RunReport holds audit metadata about one pipeline run.
type RunReport struct {
	ID            int64
	RunDate       string
	GeneratedAt   *string
	EventCount    int
	MetricCount   int
	SpikeCount    int
	SnapshotCount int
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalEvents    int
	MetricRows     int
	BaselineOkRows int
	ScoredRows     int
	Spikes         int
	Snapshots      int
	DatesCovered   int
}
