package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseDosage coerces a text cell to a number. Anything that is not a plain
// decimal or exponent literal is rejected rather than read as zero.
func ParseDosage(input string) (float64, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, false
	}
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
