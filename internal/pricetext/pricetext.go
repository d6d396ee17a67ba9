// Package pricetext extracts comparable numeric values from free-form price
// strings. Display prices arrive in whatever convention the source site used
// ("$1,234.56", "18,75 €", "USD 45.99"), so parsing is a best-effort
// heuristic rather than locale-aware formatting.
package pricetext

import (
	"regexp"
	"strconv"
	"strings"
)

var nonPriceCharsRegex = regexp.MustCompile(`[^\d.,]`)

// Parse converts a price string to a float. The second return value is false
// when the input is empty or no number could be extracted.
//
// Separator handling: when both "," and "." are present, commas are treated
// as thousands separators. A lone comma followed by at most two digits is
// treated as a decimal separator. This biases ambiguous 3-digit groups toward
// the thousands interpretation ("1,234" parses as 1234, not 1.234), matching
// the dominant US-format sources.
func Parse(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}

	cleaned := nonPriceCharsRegex.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case hasComma:
		if idx := strings.LastIndex(cleaned, ","); len(cleaned)-idx-1 <= 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}
