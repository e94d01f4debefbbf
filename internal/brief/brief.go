// Package brief composes a markdown risk brief for a single day from
// snapshots, spikes and the top scored metrics.
package brief

import (
	"fmt"
	"strings"

	"github.com/georisk/georisk/internal/database"
)

const topRiskCount = 10

// Composer builds daily briefs from stored pipeline output.
type Composer struct {
	db *database.DB
}

// NewComposer creates a brief composer.
func NewComposer(db *database.DB) *Composer {
	return &Composer{db: db}
}

// Compose builds the markdown brief for a date. An empty date means the
// latest date with metrics. Returns the resolved date alongside the brief.
func (c *Composer) Compose(date string) (string, string, error) {
	if date == "" {
		latest, err := c.db.GetLatestMetricDate()
		if err != nil {
			return "", "", err
		}
		if latest == "" {
			return "", "", fmt.Errorf("no pipeline output yet; run 'georisk run' first")
		}
		date = latest
	}

	snapshots, err := c.db.GetSnapshotsForDate(date)
	if err != nil {
		return "", "", err
	}
	spikes, err := c.db.GetSpikesForDate(date)
	if err != nil {
		return "", "", err
	}
	topRisks, err := c.db.GetTopRisks(date, topRiskCount)
	if err != nil {
		return "", "", err
	}

	return date, assemble(date, snapshots, spikes, topRisks), nil
}

func assemble(date string, snapshots []database.RiskSnapshot, spikes []database.Spike, topRisks []database.DailyMetric) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Risk Brief — %s\n\n", database.FormatDateDisplay(date))

	b.WriteString(headline(snapshots, spikes))
	b.WriteString("\n## Countries\n\n")

	if len(snapshots) == 0 {
		b.WriteString("No snapshot rows for this date.\n")
	} else {
		b.WriteString("| Country | Risk | Severity | Events |\n")
		b.WriteString("|---------|-----:|---------:|-------:|\n")
		for _, s := range snapshots {
			fmt.Fprintf(&b, "| %s | %s | %s | %d |\n",
				s.Country, formatScore(s.RiskScore), formatScore(s.SeverityIndex), s.EventCount)
		}
	}

	b.WriteString("\n## Spikes\n\n")
	if len(spikes) == 0 {
		b.WriteString("No spikes detected for this date.\n")
	} else {
		for _, s := range spikes {
			delta := ""
			if s.Delta != nil {
				delta = fmt.Sprintf(", +%.1f over baseline", *s.Delta)
			}
			fmt.Fprintf(&b, "- **%s — %s**: z=%.2f%s (%d evidence events)\n",
				s.Country, s.Category, s.ZUsed, delta, len(s.EvidenceEventIDs))
		}
	}

	b.WriteString("\n## Top Category Risks\n\n")
	if len(topRisks) == 0 {
		b.WriteString("No scored metrics for this date.\n")
	} else {
		for _, m := range topRisks {
			fmt.Fprintf(&b, "- %s — %s: risk %s, %d events\n",
				m.Country, m.Category, formatScore(m.RiskScore), m.EventCount)
		}
	}

	return b.String()
}

// headline produces the summary bullets at the top of the brief.
func headline(snapshots []database.RiskSnapshot, spikes []database.Spike) string {
	var bullets []string

	for i, s := range snapshots {
		if i >= 3 || s.RiskScore == nil {
			break
		}
		bullets = append(bullets, fmt.Sprintf("- %s leads at risk %.1f with %d events.",
			s.Country, *s.RiskScore, s.EventCount))
	}
	if len(spikes) > 0 {
		bullets = append(bullets, fmt.Sprintf("- %d spike(s) detected; strongest in %s — %s (z=%.2f).",
			len(spikes), spikes[0].Country, spikes[0].Category, spikes[0].ZUsed))
	}
	if len(bullets) == 0 {
		return "- Quiet day: no scored countries or spikes.\n"
	}
	return strings.Join(bullets, "\n") + "\n"
}

func formatScore(v *float64) string {
	if v == nil {
		return "–"
	}
	return fmt.Sprintf("%.1f", *v)
}
