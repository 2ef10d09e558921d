package widget

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/tpsbot/reporter/internal/models"
)

func TestFindPeak_EarliestTieWins(t *testing.T) {
	t1 := time.Unix(1000, 0)
	t2 := time.Unix(2000, 0)
	t3 := time.Unix(3000, 0)
	t4 := time.Unix(4000, 0)

	peak := FindPeak([]models.SeriesPoint{
		{Timestamp: t1, Value: 100},
		{Timestamp: t2, Value: 300},
		{Timestamp: t3, Value: 300},
		{Timestamp: t4, Value: 50},
	})

	require.True(t, peak.HasData)
	require.Equal(t, 300.0, peak.Value)
	require.Equal(t, t2, peak.Time, "tie must keep the earliest timestamp")
}

func TestFindPeak_EmptySeries(t *testing.T) {
	peak := FindPeak(nil)

	require.False(t, peak.HasData)
	require.Equal(t, 0.0, peak.Value)
	require.True(t, peak.Time.IsZero())
}

func TestFindPeak_SinglePoint(t *testing.T) {
	ts := time.Unix(5000, 0)
	peak := FindPeak([]models.SeriesPoint{{Timestamp: ts, Value: 0}})

	require.True(t, peak.HasData, "a genuine zero peak still counts as data")
	require.Equal(t, 0.0, peak.Value)
	require.Equal(t, ts, peak.Time)
}

func TestFormatPeakTime(t *testing.T) {
	et, err := time.LoadLocation("US/Eastern")
	require.NoError(t, err)

	// 2025-08-03 18:35:00 UTC is 2:35 PM EDT.
	ts := time.Date(2025, time.August, 3, 18, 35, 0, 0, time.UTC)
	require.Equal(t, "2:35 PM ET on Aug 3th, 2025", FormatPeakTime(ts, et))

	// Winter date crosses the DST boundary: 17:05 UTC is 12:05 PM EST.
	winter := time.Date(2025, time.January, 21, 17, 5, 0, 0, time.UTC)
	require.Equal(t, "12:05 PM ET on Jan 21th, 2025", FormatPeakTime(winter, et))
}
