package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractSeries_FlatPoints(t *testing.T) {
	raw := []any{
		map[string]any{"beginTimeSeconds": 1000.0, "tps": 120.5},
		map[string]any{"beginTimeSeconds": 2000.0, "tps": 240.0},
		map[string]any{"beginTimeSeconds": 1500.0, "tps": 180.0},
	}

	points, skipped := ExtractSeries(raw)

	require.Zero(t, skipped)
	require.Len(t, points, 3)
	// Sorted ascending regardless of input order.
	require.Equal(t, 120.5, points[0].Value)
	require.Equal(t, 180.0, points[1].Value)
	require.Equal(t, 240.0, points[2].Value)
}

func TestExtractSeries_NestedAndHeterogeneous(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{"x": 1000.0, "y": 5.0},
			map[string]any{"timestamp": 2000.0, "value": 7.5},
		},
	}

	points, skipped := ExtractSeries(raw)

	require.Zero(t, skipped)
	require.Len(t, points, 2)
	require.Equal(t, 5.0, points[0].Value)
	require.Equal(t, 7.5, points[1].Value)
}

func TestExtractSeries_MillisecondEpochs(t *testing.T) {
	raw := []any{
		map[string]any{"timestamp": 1722700000000.0, "value": 9.0},
	}

	points, _ := ExtractSeries(raw)

	require.Len(t, points, 1)
	require.Equal(t, time.Unix(1722700000, 0).UTC(), points[0].Timestamp)
}

func TestExtractSeries_RFC3339Timestamps(t *testing.T) {
	raw := []any{
		map[string]any{"time": "2025-08-03T12:00:00Z", "value": 3.0},
	}

	points, _ := ExtractSeries(raw)

	require.Len(t, points, 1)
	require.Equal(t, 2025, points[0].Timestamp.Year())
}

func TestExtractSeries_SkipsMalformedPoints(t *testing.T) {
	raw := []any{
		map[string]any{"beginTimeSeconds": 1000.0, "tps": 10.0},
		map[string]any{"tps": 99.0},                // value without timestamp
		map[string]any{"beginTimeSeconds": 3000.0}, // timestamp without value
		map[string]any{"beginTimeSeconds": 4000.0, "tps": 40.0},
	}

	points, skipped := ExtractSeries(raw)

	require.Len(t, points, 2)
	require.Equal(t, 2, skipped)
}

func TestExtractSeries_EntirelyUnusable(t *testing.T) {
	points, skipped := ExtractSeries([]any{
		map[string]any{"note": "no data here"},
	})

	require.Empty(t, points)
	require.Zero(t, skipped)
}
