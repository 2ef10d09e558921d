package widget

import (
	"sort"
	"time"

	"github.com/tpsbot/reporter/internal/models"
)

// Keys the dashboard uses for a point's value, in probe order.
var valueKeys = []string{"tps", "y", "value", "rate", "count"}

// Keys the dashboard uses for a point's timestamp, in probe order.
var timeKeys = []string{"endTimeSeconds", "beginTimeSeconds", "x", "timestamp", "endTime", "time"}

// ExtractSeries walks an arbitrary raw payload collecting time-series
// points from any nesting depth. Points missing a usable value or
// timestamp are skipped and counted; the result is sorted by time
// ascending.
func ExtractSeries(raw any) (points []models.SeriesPoint, skipped int) {
	points, skipped = gatherPoints(raw)
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, skipped
}

func gatherPoints(obj any) ([]models.SeriesPoint, int) {
	switch v := obj.(type) {
	case nil:
		return nil, 0
	case []any:
		var points []models.SeriesPoint
		var skipped int
		for _, item := range v {
			p, s := gatherPoints(item)
			points = append(points, p...)
			skipped += s
		}
		return points, skipped
	case map[string]any:
		var points []models.SeriesPoint
		var skipped int

		value, haveValue := firstNumeric(v, valueKeys)
		ts, haveTS := firstTimestamp(v, timeKeys)
		switch {
		case haveValue && haveTS:
			points = append(points, models.SeriesPoint{Timestamp: ts, Value: value})
		case haveValue != haveTS:
			// Half a point: one of value/timestamp present without the
			// other. Skip it, keep scanning.
			skipped++
		}

		for _, child := range v {
			if _, ok := child.(map[string]any); !ok {
				if _, ok := child.([]any); !ok {
					continue
				}
			}
			p, s := gatherPoints(child)
			points = append(points, p...)
			skipped += s
		}
		return points, skipped
	}
	return nil, 0
}

func firstNumeric(m map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		if v, ok := ParseNumeric(m[k]); ok {
			return v, true
		}
	}
	return 0, false
}

func firstTimestamp(m map[string]any, keys []string) (time.Time, bool) {
	for _, k := range keys {
		if t, ok := toTime(m[k]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// toTime interprets a raw timestamp: epoch seconds, epoch milliseconds
// (heuristically, values past 1e12), or an RFC 3339 string.
func toTime(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		return epochToTime(ts), true
	case int:
		return epochToTime(float64(ts)), true
	case int64:
		return epochToTime(float64(ts)), true
	case string:
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			return t, true
		}
		if f, ok := parseNumericString(ts); ok {
			return epochToTime(f), true
		}
	}
	return time.Time{}, false
}

func epochToTime(t float64) time.Time {
	if t > 1e12 {
		t /= 1000
	}
	return time.Unix(int64(t), 0).UTC()
}
