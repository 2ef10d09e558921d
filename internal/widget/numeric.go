package widget

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)([kKmM%])?`)

// ParseNumeric converts a payload value into a float. Strings may carry a
// trailing percent sign (stripped, unit-less result) or an abbreviation
// suffix: "2.48k" -> 2480, "1.2m" -> 1200000, case-insensitive.
func ParseNumeric(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return parseNumericString(v)
	}
	return 0, false
}

func parseNumericString(s string) (float64, bool) {
	m := numberPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	// The suffix only counts when it sits directly after the digits, so
	// surrounding prose ("vs last week") never becomes a multiplier.
	switch strings.ToLower(m[2]) {
	case "k":
		f *= 1_000
	case "m":
		f *= 1_000_000
	}
	return f, true
}
