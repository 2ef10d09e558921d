package widget

import (
	"strings"

	"github.com/tpsbot/reporter/internal/models"
)

// Classify maps a widget title onto one of the five KPI categories using
// case-insensitive substring rules. This is the only place the fuzzy
// title matching lives; swap it for exact widget IDs if the upstream
// dashboard schema ever stabilizes.
func Classify(title string) (models.Category, bool) {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "total tps") || strings.Contains(t, "tsys tps"):
		return models.CategoryTSYSTPS, true
	case strings.Contains(t, "hpns tps"):
		return models.CategoryHPNSTPS, true
	case strings.Contains(t, "tsys") && strings.Contains(t, "capacity"):
		return models.CategoryTSYSCapacity, true
	case strings.Contains(t, "hpns") && strings.Contains(t, "capacity"):
		return models.CategoryHPNSCapacity, true
	case strings.Contains(t, "ratio"):
		return models.CategoryTPSRatio, true
	}
	return "", false
}
