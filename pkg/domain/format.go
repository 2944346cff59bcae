package domain

import (
	"fmt"
	"math"
)

// FormatQualityPercent renders a [0,1] quality or confidence score as a
// percentage rounded to one decimal place, e.g. 0.857 -> "85.7%".
func FormatQualityPercent(score float64) string {
	pct := math.Round(score*1000) / 10
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatCostUSD renders a metered cost with four decimal places,
// e.g. 0.0325 -> "$0.0325".
func FormatCostUSD(cost float64) string {
	return fmt.Sprintf("$%.4f", cost)
}
