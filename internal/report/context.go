// Package report assembles the final template context and renders it.
// All rounding happens here, at the presentation boundary; everything
// upstream keeps full floating precision.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tpsbot/reporter/internal/models"
	"github.com/tpsbot/reporter/internal/widget"
)

// placeholder stands in for values the snapshot could not supply.
const placeholder = "--"

// Meta is the human-facing report metadata, fixed per run.
type Meta struct {
	UserName     string
	EventName    string
	DashboardURL string
}

// Context is the flat payload handed to the template renderer. Every
// field is already formatted; the template does no computation.
type Context struct {
	UserName        string
	Timestamp       string
	EventName       string
	ReportDate      string
	ReportTime      string
	DashboardURL    string
	TrafficStatus   string
	CapacityStatus  string
	Trends          string
	TSYSAvgTPS      string
	TSYSPeakTPS     string
	TSYSPeakTime    string
	TSYSAvgCapacity string
	HPNSAvgTPS      string
	HPNSPeakTPS     string
	HPNSPeakTime    string
	HPNSAvgCapacity string
	TPSRatio        string
}

// Builder assembles Contexts from snapshots and translator output.
type Builder struct {
	meta Meta
	loc  *time.Location
	now  func() time.Time
}

// NewBuilder creates a Builder that formats times in the given display
// timezone.
func NewBuilder(meta Meta, loc *time.Location) *Builder {
	return &Builder{meta: meta, loc: loc, now: time.Now}
}

// Build merges the snapshot and narrative into the renderer's context.
// An empty eventName falls back to the configured one.
func (b *Builder) Build(snap models.Snapshot, narrative models.Narrative, eventName string) Context {
	now := b.now().In(b.loc)
	if eventName == "" {
		eventName = b.meta.EventName
	}

	tsys := snap[models.CategoryTSYSTPS]
	hpns := snap[models.CategoryHPNSTPS]
	tsysCap := snap[models.CategoryTSYSCapacity]
	hpnsCap := snap[models.CategoryHPNSCapacity]
	ratio := snap[models.CategoryTPSRatio]

	lines := make([]string, 0, len(narrative.Trends))
	for _, t := range narrative.Trends {
		lines = append(lines, "• "+t)
	}

	return Context{
		UserName:        b.meta.UserName,
		Timestamp:       fmt.Sprintf("%s at %s", now.Format("Jan 2"), now.Format("3:04 PM MST")),
		EventName:       eventName,
		ReportDate:      now.Format("January 2, 2006"),
		ReportTime:      now.Format("3:04 PM MST"),
		DashboardURL:    b.meta.DashboardURL,
		TrafficStatus:   narrative.TrafficStatus.Indicator(),
		CapacityStatus:  narrative.CapacityStatus.Indicator(),
		Trends:          strings.Join(lines, "\n"),
		TSYSAvgTPS:      formatTPS(tsys.CurrentValue),
		TSYSPeakTPS:     formatPeakTPS(tsys.Peak),
		TSYSPeakTime:    b.formatPeakTime(tsys.Peak),
		TSYSAvgCapacity: formatPct(tsysCap.CurrentValue),
		HPNSAvgTPS:      formatTPS(hpns.CurrentValue),
		HPNSPeakTPS:     formatPeakTPS(hpns.Peak),
		HPNSPeakTime:    b.formatPeakTime(hpns.Peak),
		HPNSAvgCapacity: formatPct(hpnsCap.CurrentValue),
		TPSRatio:        formatPct(ratio.CurrentValue),
	}
}

// formatTPS rounds a transaction rate to a whole number.
func formatTPS(v float64) string {
	return strconv.Itoa(int(math.Round(v)))
}

// formatPeakTPS renders a peak rate, or the placeholder when the series
// carried no data. The HasData check is what keeps an empty series from
// reading as a genuine zero peak.
func formatPeakTPS(p models.PeakResult) string {
	if !p.HasData {
		return placeholder
	}
	return formatTPS(p.Value)
}

func (b *Builder) formatPeakTime(p models.PeakResult) string {
	if !p.HasData {
		return placeholder
	}
	return widget.FormatPeakTime(p.Time, b.loc)
}

// formatPct renders a percentage with one decimal place.
func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
