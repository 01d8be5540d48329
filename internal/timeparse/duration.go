package timeparse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDurationToSeconds converts "H:MM:SS" into seconds. Hours are not
// bounded. Anything else yields NaN, which callers exclude from means.
func ParseDurationToSeconds(value string) float64 {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return math.NaN()
	}

	var fields [3]int64
	for i, p := range parts {
		if p == "" {
			return math.NaN()
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return math.NaN()
		}
		fields[i] = n
	}

	hours, minutes, seconds := fields[0], fields[1], fields[2]
	if minutes >= 60 || seconds >= 60 {
		return math.NaN()
	}

	return float64(hours*3600 + minutes*60 + seconds)
}

// FormatSecondsToTime renders seconds as zero-padded "HH:MM:SS". NaN,
// infinite and negative inputs render as the empty string.
func FormatSecondsToTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return ""
	}

	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// SecondsToMinutes converts seconds to minutes, keeping NaN.
func SecondsToMinutes(seconds float64) float64 {
	return seconds / 60
}

// Mean averages values, skipping NaN. It returns NaN when nothing is left.
func Mean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
