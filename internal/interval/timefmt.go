package interval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime renders seconds as M:SS, or H:MM:SS once an hour is reached.
// Fractions are truncated.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseTime parses M:SS or H:MM:SS into seconds.
func ParseTime(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("interval: parse time %q: want M:SS or H:MM:SS", s)
	}
	var total float64
	for _, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("interval: parse time %q: bad component %q", s, p)
		}
		total = total*60 + n
	}
	return total, nil
}
