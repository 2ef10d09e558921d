// Package models defines the KPI data structures shared across the reporter.
// Wire types mirror the NerdGraph dashboard response; domain types are the
// normalized records the translator and assembler operate on.
package models

import "time"

// Trend classifies a KPI's change versus the prior period as displayed
// by the dashboard. Sign semantics live here, never in ComparisonPct.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Category identifies one of the five KPI slots a widget can fill.
type Category string

const (
	CategoryTSYSTPS      Category = "tsys_tps"
	CategoryHPNSTPS      Category = "hpns_tps"
	CategoryTSYSCapacity Category = "tsys_capacity"
	CategoryHPNSCapacity Category = "hpns_capacity"
	CategoryTPSRatio     Category = "tps_ratio"
)

// Categories lists all required snapshot slots in report order.
var Categories = []Category{
	CategoryTSYSTPS,
	CategoryHPNSTPS,
	CategoryTSYSCapacity,
	CategoryHPNSCapacity,
	CategoryTPSRatio,
}

// WidgetRecord is the normalized form of one dashboard widget.
// ComparisonPct is always a non-negative magnitude; direction is
// carried exclusively by Trend.
type WidgetRecord struct {
	Title         string
	CurrentValue  float64
	ComparisonPct float64
	Trend         Trend
	DisplayValue  string
	Peak          PeakResult
}

// SeriesPoint is one sample of a widget's embedded time series.
type SeriesPoint struct {
	Timestamp time.Time
	Value     float64
}

// PeakResult holds the maximum of a widget's series and when it occurred.
// HasData distinguishes a genuine zero peak from an empty series; callers
// must check it before surfacing Value or Time to the reader.
type PeakResult struct {
	Value   float64
	Time    time.Time
	HasData bool
}

// Snapshot maps the five KPI categories to their normalized records.
// It is built fresh per run and never shared between runs.
type Snapshot map[Category]WidgetRecord

// Status is a three-valued health signal derived from numeric thresholds.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// Indicator returns the emoji form used at the presentation boundary.
func (s Status) Indicator() string {
	switch s {
	case StatusGreen:
		return "🟢"
	case StatusYellow:
		return "🟡"
	case StatusRed:
		return "🔴"
	}
	return "⚪"
}

// Narrative is the sole output of the trend translator: three narrative
// lines in fixed order plus the two status indicators.
type Narrative struct {
	Trends         []string
	TrafficStatus  Status
	CapacityStatus Status
}

// RawWidget is the wire shape of one dashboard widget as returned by
// NerdGraph. Payload contents vary by visualization kind; the normalizer
// owns the interpretation.
type RawWidget struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Visualization Visualization  `json:"visualization"`
	Layout        WidgetLayout   `json:"layout"`
	RawConfig     map[string]any `json:"rawConfiguration"`
	Data          WidgetData     `json:"data"`
}

// Visualization identifies the widget's chart type (viz.billboard,
// viz.line, ...).
type Visualization struct {
	ID string `json:"id"`
}

// WidgetLayout is the widget's grid placement on the dashboard page.
type WidgetLayout struct {
	Column int `json:"column"`
	Row    int `json:"row"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WidgetData carries the query results attached to a widget. Raw is
// either a list of data points or a nested object depending on the
// visualization; Visualization holds billboard-style summary fields.
type WidgetData struct {
	Raw           any            `json:"raw"`
	Visualization map[string]any `json:"visualization"`
}
