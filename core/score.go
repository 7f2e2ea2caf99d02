package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseScore converts a backend-reported confidence score to a number.
// Missing, non-numeric, and NaN values all parse to 0, the maximally low
// confidence. This function decides stage-3 escalation for malformed
// backend output, so it is kept isolated here.
func ParseScore(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}
