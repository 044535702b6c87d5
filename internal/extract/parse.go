package extract

import (
	"math"
	"strconv"
	"strings"
)

// refused reports whether a raw completion is the refusal sentinel or
// carries no usable content at all.
func refused(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == RefusalSentinel {
		return true
	}
	return strings.EqualFold(trimmed, "none")
}

// parseFreeText passes the completion through untouched, mapping refusals
// to nil.
func parseFreeText(raw string) *string {
	if refused(raw) {
		return nil
	}
	value := strings.TrimSpace(raw)
	return &value
}

// parseMinutes reads the completion as a whole number of minutes. Malformed
// numeric output degrades to nil rather than failing the pipeline.
func parseMinutes(raw string) *int {
	if refused(raw) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	minutes := int(math.Floor(v))
	return &minutes
}

// parseServings reads a servings count or range into half-open bounds.
// "2-4" yields [2, 5) and a single "3" yields [3, 4); the +1 on the upper
// bound converts the recipe's inclusive range into the half-open convention
// used everywhere downstream. Malformed output degrades to nil bounds.
func parseServings(raw string) (*int, *int) {
	if refused(raw) {
		return nil, nil
	}
	trimmed := strings.TrimSpace(raw)

	if lowText, highText, found := strings.Cut(trimmed, "-"); found && lowText != "" && highText != "" {
		low, errLow := strconv.ParseFloat(strings.TrimSpace(lowText), 64)
		high, errHigh := strconv.ParseFloat(strings.TrimSpace(highText), 64)
		if errLow != nil || errHigh != nil {
			return nil, nil
		}
		min := int(math.Floor(low))
		max := int(math.Floor(high)) + 1
		if min < 1 || max <= min {
			return nil, nil
		}
		return &min, &max
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, nil
	}
	min := int(math.Floor(v))
	if min < 1 {
		// a count of zero or less means the model produced garbage, and a
		// bare leading hyphen lands here as a negative number
		return nil, nil
	}
	max := min + 1
	return &min, &max
}
