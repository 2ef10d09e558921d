// Package translate turns a normalized KPI snapshot into narrative lines
// and status indicators. It is a pure rule engine: no I/O, no mutation of
// its inputs, and byte-identical output for identical inputs.
package translate

import (
	"fmt"

	"github.com/tpsbot/reporter/internal/models"
)

// Thresholds are the tunables the rules compare against, fixed per run.
type Thresholds struct {
	CapacityWarning  float64
	CapacityCritical float64
	RatioStability   float64
}

// Traffic status cutoffs (transactions per second).
const (
	tsysTPSGreen  = 2000.0
	hpnsTPSGreen  = 800.0
	tsysTPSYellow = 1000.0
	hpnsTPSYellow = 400.0
)

// A comparison below this magnitude reads as "stable" in the TPS line.
const stableBelowPct = 1.0

// MissingKeyError reports a required KPI category that never matched any
// widget. It is fatal for the run: an incomplete report must not be
// delivered.
type MissingKeyError struct {
	Category models.Category
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("snapshot is missing required category %q", e.Category)
}

// Translator applies the narrative rules against configured thresholds.
type Translator struct {
	thresholds Thresholds
}

// New creates a Translator with the given thresholds.
func New(thresholds Thresholds) *Translator {
	return &Translator{thresholds: thresholds}
}

// Translate produces the three narrative lines (TPS, ratio, capacity — in
// that order) and the two status indicators. It fails before producing
// anything if any of the five categories is absent.
func (t *Translator) Translate(snap models.Snapshot) (models.Narrative, error) {
	for _, cat := range models.Categories {
		if _, ok := snap[cat]; !ok {
			return models.Narrative{}, &MissingKeyError{Category: cat}
		}
	}

	tsys := snap[models.CategoryTSYSTPS]
	hpns := snap[models.CategoryHPNSTPS]
	tsysCap := snap[models.CategoryTSYSCapacity]
	hpnsCap := snap[models.CategoryHPNSCapacity]
	ratio := snap[models.CategoryTPSRatio]

	return models.Narrative{
		Trends: []string{
			t.tpsLine(tsys, hpns),
			t.ratioLine(ratio),
			t.capacityLine(tsysCap, hpnsCap),
		},
		TrafficStatus:  t.trafficStatus(tsys, hpns),
		CapacityStatus: t.capacityStatus(tsysCap, hpnsCap),
	}, nil
}

// tpsLine combines both TPS records into a single sentence with exactly
// one grammatical "is" per clause.
func (t *Translator) tpsLine(tsys, hpns models.WidgetRecord) string {
	return fmt.Sprintf("The TPS is %s for TSYS Mainframe; HPNS is running about %s.",
		trendClause(tsys), trendClause(hpns))
}

// trendClause renders one record's week-over-week movement.
func trendClause(rec models.WidgetRecord) string {
	if rec.Trend == models.TrendNeutral || rec.ComparisonPct < stableBelowPct {
		return "stable"
	}
	return fmt.Sprintf("%.1f%% %s than last week", rec.ComparisonPct, direction(rec.Trend))
}

// ratioLine describes the HPNS share of total traffic and whether its
// drift is within the stability threshold.
func (t *Translator) ratioLine(ratio models.WidgetRecord) string {
	stability := "in line with what we have been seeing since last week"
	if ratio.Trend != models.TrendNeutral && ratio.ComparisonPct >= t.thresholds.RatioStability {
		stability = fmt.Sprintf("%.1f%% %s than last week", ratio.ComparisonPct, direction(ratio.Trend))
	}
	return fmt.Sprintf("Requests that require data from HPNS have been approx. %.1f%% of total, which is %s.",
		ratio.CurrentValue, stability)
}

// capacityLine classifies the higher of the two capacity readings against
// the warning and critical thresholds. A tie on the critical sentence
// names TSYS.
func (t *Translator) capacityLine(tsysCap, hpnsCap models.WidgetRecord) string {
	maxCap := tsysCap.CurrentValue
	service := "TSYS"
	if hpnsCap.CurrentValue > maxCap {
		maxCap = hpnsCap.CurrentValue
		service = "HPNS"
	}

	switch {
	case maxCap >= t.thresholds.CapacityCritical:
		return fmt.Sprintf("Capacity utilization is elevated at %.1f%% for %s. Recommend monitoring closely.",
			maxCap, service)
	case maxCap >= t.thresholds.CapacityWarning:
		return fmt.Sprintf("Capacity utilization is elevated but manageable (TSYS: %.1f%%, HPNS: %.1f%%). Monitoring trends.",
			tsysCap.CurrentValue, hpnsCap.CurrentValue)
	}
	return "Growth is closely matching last week's behavior. There are no capacity concerns at this time."
}

func (t *Translator) trafficStatus(tsys, hpns models.WidgetRecord) models.Status {
	switch {
	case tsys.CurrentValue > tsysTPSGreen && hpns.CurrentValue > hpnsTPSGreen:
		return models.StatusGreen
	case tsys.CurrentValue > tsysTPSYellow || hpns.CurrentValue > hpnsTPSYellow:
		return models.StatusYellow
	}
	return models.StatusRed
}

func (t *Translator) capacityStatus(tsysCap, hpnsCap models.WidgetRecord) models.Status {
	maxCap := tsysCap.CurrentValue
	if hpnsCap.CurrentValue > maxCap {
		maxCap = hpnsCap.CurrentValue
	}
	switch {
	case maxCap >= t.thresholds.CapacityCritical:
		return models.StatusRed
	case maxCap >= t.thresholds.CapacityWarning:
		return models.StatusYellow
	}
	return models.StatusGreen
}

func direction(trend models.Trend) string {
	if trend == models.TrendDown {
		return "lower"
	}
	return "higher"
}
