// Package widget normalizes raw dashboard widget payloads into KPI records.
// Payload shapes vary by visualization kind (billboard, line chart, ...);
// each kind gets its own extractor, and anything unrecognized is rejected
// with an ExtractionError instead of a silent partial parse.
package widget

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tpsbot/reporter/internal/models"
)

// payloadKind tags the detected visualization shape of a widget.
type payloadKind int

const (
	kindUnknown payloadKind = iota
	kindBillboard
	kindLine
)

// trendArrows maps the directional glyphs the dashboard renders next to
// comparison percentages.
var trendArrows = map[string]models.Trend{
	"↗": models.TrendUp,
	"▲": models.TrendUp,
	"↑": models.TrendUp,
	"↘": models.TrendDown,
	"▼": models.TrendDown,
	"↓": models.TrendDown,
}

// trendKeywords covers payloads that spell the direction out instead of
// (or in addition to) drawing an arrow.
var trendKeywords = map[string]models.Trend{
	"up":       models.TrendUp,
	"increase": models.TrendUp,
	"higher":   models.TrendUp,
	"down":     models.TrendDown,
	"decrease": models.TrendDown,
	"lower":    models.TrendDown,
	"neutral":  models.TrendNeutral,
	"flat":     models.TrendNeutral,
}

// Normalizer converts raw widgets into a Snapshot. It is stateless apart
// from its logger; Normalize is safe to call concurrently on independent
// widget sets.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer that logs per-widget parse warnings
// to the given logger.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize parses every widget, classifies it into one of the five KPI
// categories, and returns the resulting snapshot. Widgets that cannot be
// parsed or that match no category are dropped with a log line; when two
// widgets claim the same category the later one wins.
func (n *Normalizer) Normalize(widgets []models.RawWidget) models.Snapshot {
	snap := make(models.Snapshot, len(models.Categories))
	for _, w := range widgets {
		rec, err := n.normalizeOne(w)
		if err != nil {
			n.logger.Warn("Dropping widget",
				zap.String("title", w.Title),
				zap.Error(err))
			continue
		}
		cat, ok := Classify(rec.Title)
		if !ok {
			n.logger.Debug("Widget matches no KPI category",
				zap.String("title", rec.Title))
			continue
		}
		snap[cat] = rec
	}
	return snap
}

// normalizeOne extracts a WidgetRecord from a single raw widget.
func (n *Normalizer) normalizeOne(w models.RawWidget) (models.WidgetRecord, error) {
	if w.Title == "" {
		return models.WidgetRecord{}, &ExtractionError{Title: w.ID, Reason: "widget has no title"}
	}

	kind := detectKind(w)
	if kind == kindUnknown {
		return models.WidgetRecord{}, &ExtractionError{
			Title:  w.Title,
			Reason: fmt.Sprintf("unsupported visualization %q", w.Visualization.ID),
		}
	}

	series, skipped := ExtractSeries(w.Data.Raw)
	if skipped > 0 {
		n.logger.Warn("Skipped malformed series points",
			zap.String("title", w.Title),
			zap.Int("skipped", skipped))
	}

	var current float64
	var ok bool
	switch kind {
	case kindBillboard:
		current, ok = extractBillboardValue(w)
	case kindLine:
		current, ok = extractLineValue(w, series)
	}
	if !ok {
		return models.WidgetRecord{}, &ExtractionError{Title: w.Title, Reason: "no numeric value found"}
	}

	pct, trend := extractComparison(w)
	// A zero-magnitude comparison is indistinguishable from "no change";
	// direction collapses to neutral either way.
	if pct == 0 {
		trend = models.TrendNeutral
	}

	return models.WidgetRecord{
		Title:         w.Title,
		CurrentValue:  current,
		ComparisonPct: pct,
		Trend:         trend,
		DisplayValue:  displayValue(w, current),
		Peak:          FindPeak(series),
	}, nil
}

// detectKind maps the visualization ID to a payload kind, falling back to
// shape sniffing when the ID is absent.
func detectKind(w models.RawWidget) payloadKind {
	id := strings.ToLower(w.Visualization.ID)
	switch {
	case strings.Contains(id, "billboard"):
		return kindBillboard
	case strings.Contains(id, "line"), strings.Contains(id, "area"):
		return kindLine
	case id != "":
		return kindUnknown
	}
	if _, ok := w.Data.Visualization["currentValue"]; ok {
		return kindBillboard
	}
	if w.Data.Raw != nil {
		return kindLine
	}
	return kindUnknown
}

// extractBillboardValue reads the headline number of a billboard widget,
// trying the summary field first and then the raw result locations.
func extractBillboardValue(w models.RawWidget) (float64, bool) {
	if v, ok := ParseNumeric(w.Data.Visualization["currentValue"]); ok {
		return v, true
	}
	return rawValue(w)
}

// extractLineValue reads the current value of a line widget: an explicit
// raw field when present, otherwise the latest series point.
func extractLineValue(w models.RawWidget, series []models.SeriesPoint) (float64, bool) {
	if v, ok := rawValue(w); ok {
		return v, true
	}
	if len(series) > 0 {
		return series[len(series)-1].Value, true
	}
	return 0, false
}

// rawValue probes the common "current"/"value" locations inside data.raw.
func rawValue(w models.RawWidget) (float64, bool) {
	raw, ok := w.Data.Raw.(map[string]any)
	if !ok {
		return 0, false
	}
	for _, key := range []string{"current", "value"} {
		if v, ok := ParseNumeric(raw[key]); ok {
			return v, true
		}
	}
	return 0, false
}

// extractComparison determines the week-over-week change magnitude and
// direction. Explicit comparison fields win; otherwise the arrow glyph
// and its adjacent percentage in the widget text are used.
func extractComparison(w models.RawWidget) (float64, models.Trend) {
	pct, havePct := comparisonField(w)
	trend := trendField(w)

	subtitle, _ := w.RawConfig["subtitle"].(string)
	for _, text := range []string{subtitle, w.Title} {
		arrowTrend, arrowPct, ok := parseArrowComparison(text)
		if !ok {
			continue
		}
		if trend == models.TrendNeutral {
			trend = arrowTrend
		}
		if !havePct {
			pct, havePct = arrowPct, true
		}
		break
	}

	if pct < 0 {
		// Direction belongs to the trend; the magnitude is always stored
		// as a non-negative number.
		if trend == models.TrendNeutral {
			trend = models.TrendDown
		}
		pct = -pct
	}
	return pct, trend
}

// comparisonField reads an explicit numeric comparison from the payload.
func comparisonField(w models.RawWidget) (float64, bool) {
	if v, ok := ParseNumeric(w.Data.Visualization["comparison"]); ok {
		return v, true
	}
	if raw, ok := w.Data.Raw.(map[string]any); ok {
		if v, ok := ParseNumeric(raw["comparison"]); ok {
			return v, true
		}
	}
	return 0, false
}

// trendField reads an explicit trend keyword from the payload.
func trendField(w models.RawWidget) models.Trend {
	candidates := []any{w.Data.Visualization["trend"]}
	if raw, ok := w.Data.Raw.(map[string]any); ok {
		candidates = append(candidates, raw["trend"])
	}
	for _, c := range candidates {
		s, ok := c.(string)
		if !ok {
			continue
		}
		if t, ok := trendKeywords[strings.ToLower(strings.TrimSpace(s))]; ok {
			return t
		}
	}
	return models.TrendNeutral
}

// parseArrowComparison finds a directional glyph in text and parses the
// percentage adjacent to it. Returns ok=false when no arrow is present.
func parseArrowComparison(text string) (models.Trend, float64, bool) {
	if text == "" {
		return models.TrendNeutral, 0, false
	}
	for glyph, trend := range trendArrows {
		idx := strings.Index(text, glyph)
		if idx < 0 {
			continue
		}
		// The magnitude sits right after the arrow ("↘ 4.7%"); fall back
		// to anything numeric in the rest of the string.
		if v, ok := ParseNumeric(text[idx+len(glyph):]); ok {
			if v < 0 {
				v = -v
			}
			return trend, v, true
		}
		return trend, 0, true
	}
	return models.TrendNeutral, 0, false
}

// displayValue picks the human-facing rendition of the widget's value.
func displayValue(w models.RawWidget, current float64) string {
	if s, ok := w.RawConfig["title"].(string); ok && s != "" {
		return s
	}
	return fmt.Sprintf("%g", current)
}
