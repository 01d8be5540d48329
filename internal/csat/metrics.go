package csat

import (
	"math"

	"github.com/samber/lo"
)

// Metrics summarizes a deduplicated survey.
type Metrics struct {
	TotalResponses int
	Score          float64
	Distribution   map[Rating]int
	Positive       int
	Negative       int
	Neutral        int
}

// ComputeMetrics counts answers by rating. Score is the positive share in
// percent, rounded to two decimals, and 0 for an empty survey.
// Unrecognized answers count as neutral.
func ComputeMetrics(responses []Response) Metrics {
	m := Metrics{
		TotalResponses: len(responses),
		Distribution:   lo.CountValuesBy(responses, func(r Response) Rating { return r.Rating }),
	}

	for _, r := range responses {
		switch {
		case r.Rating.Positive():
			m.Positive++
		case r.Rating.Negative():
			m.Negative++
		default:
			m.Neutral++
		}
	}

	if m.TotalResponses > 0 {
		m.Score = round2(float64(m.Positive) / float64(m.TotalResponses) * 100)
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
