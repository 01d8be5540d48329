package csat

import (
	"strings"

	"github.com/godilite/eloca-metrics/internal/columns"
)

// Rating is the canonical survey answer.
type Rating int

const (
	RatingUnknown Rating = iota
	RatingExcellent
	RatingGood
	RatingRegular
	RatingBad
	RatingTerrible
)

// Ratings lists the recognized ratings from best to worst.
var Ratings = []Rating{RatingExcellent, RatingGood, RatingRegular, RatingBad, RatingTerrible}

var ratingPrefixes = []struct {
	prefix string
	rating Rating
}{
	{"otimo", RatingExcellent},
	{"bom", RatingGood},
	{"regular", RatingRegular},
	{"ruim", RatingBad},
	{"pessimo", RatingTerrible},
}

// ParseRating classifies free text by its prefix, ignoring case and
// accents. "Ótimo - resolveu rápido" is Excellent.
func ParseRating(s string) Rating {
	n := columns.Normalize(s)
	for _, p := range ratingPrefixes {
		if strings.HasPrefix(n, p.prefix) {
			return p.rating
		}
	}
	return RatingUnknown
}

// String returns the label used in the survey.
func (r Rating) String() string {
	switch r {
	case RatingExcellent:
		return "Ótimo"
	case RatingGood:
		return "Bom"
	case RatingRegular:
		return "Regular"
	case RatingBad:
		return "Ruim"
	case RatingTerrible:
		return "Péssimo"
	default:
		return "Não reconhecida"
	}
}

// Positive is true for Excellent and Good.
func (r Rating) Positive() bool {
	return r == RatingExcellent || r == RatingGood
}

// Negative is true for the recognized non-positive answers.
func (r Rating) Negative() bool {
	return r == RatingRegular || r == RatingBad || r == RatingTerrible
}
