// Package interval provides time-range math over seconds expressed as float64.
package interval

import "math"

// Clamp bounds v to [lo, hi]. When lo > hi the result is lo.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Contains reports whether p lies in the half-open range [start, end).
func Contains(start, end, p float64) bool {
	return p >= start && p < end
}

// Strictly reports whether p lies in the open range (start, end).
// Split points must satisfy this so both halves keep a positive length.
func Strictly(start, end, p float64) bool {
	return p > start && p < end
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && bStart < aEnd
}

// Valid reports whether [start, end) is a finite, non-empty range starting at
// or after zero.
func Valid(start, end float64) bool {
	return start >= 0 && start < end && !math.IsInf(end, 1)
}
