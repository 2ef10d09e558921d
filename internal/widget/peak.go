package widget

import (
	"fmt"
	"time"

	"github.com/tpsbot/reporter/internal/models"
)

// FindPeak scans a series once and returns its maximum value and when it
// occurred. Ties keep the first occurrence, so the earliest timestamp
// wins. An empty series yields the HasData=false sentinel; callers must
// not present that as a real zero peak.
func FindPeak(points []models.SeriesPoint) models.PeakResult {
	if len(points) == 0 {
		return models.PeakResult{}
	}
	peak := points[0]
	for _, p := range points[1:] {
		if p.Value > peak.Value {
			peak = p
		}
	}
	return models.PeakResult{Value: peak.Value, Time: peak.Timestamp, HasData: true}
}

// FormatPeakTime renders a peak timestamp in the display timezone, e.g.
// "2:35 PM ET on Aug 3th, 2025". The "th" suffix is literal for every
// day-of-month to stay byte-compatible with the reports readers already
// receive; see DESIGN.md before changing it.
func FormatPeakTime(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%s ET on %s %dth, %d",
		local.Format("3:04 PM"),
		local.Format("Jan"),
		local.Day(),
		local.Year())
}
