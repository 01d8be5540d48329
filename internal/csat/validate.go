package csat

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/godilite/eloca-metrics/internal/columns"
	"github.com/godilite/eloca-metrics/internal/sheet"
)

// Integrity lists data-quality findings in a raw survey. None of them stop
// the pipeline.
type Integrity struct {
	NullTickets  []int
	NullRatings  []int
	Unrecognized map[string]int
}

// Warnings renders the findings as log-ready messages.
func (i Integrity) Warnings() []string {
	var out []string
	if n := len(i.NullTickets); n > 0 {
		out = append(out, fmt.Sprintf("%d survey rows without ticket code", n))
	}
	if n := len(i.NullRatings); n > 0 {
		out = append(out, fmt.Sprintf("%d survey rows without rating", n))
	}
	raws := lo.Keys(i.Unrecognized)
	sort.Strings(raws)
	for _, raw := range raws {
		out = append(out, fmt.Sprintf("%d survey rows with unrecognized rating %q", i.Unrecognized[raw], raw))
	}
	return out
}

// Validate inspects the raw survey. Columns that are not bound are
// skipped; the deduplicator reports those.
func Validate(tbl *sheet.Table, binding columns.Binding) Integrity {
	res := Integrity{Unrecognized: make(map[string]int)}
	ticketCol := binding.Lookup(columns.Ticket)
	ratingCol := binding.Lookup(columns.Rating)

	for i := 0; i < tbl.Len(); i++ {
		if ticketCol.Found && sheet.Key(tbl.Cell(i, ticketCol.Index)) == "" {
			res.NullTickets = append(res.NullTickets, i)
		}
		if !ratingCol.Found {
			continue
		}
		raw := tbl.Cell(i, ratingCol.Index)
		switch {
		case raw == "":
			res.NullRatings = append(res.NullRatings, i)
		case ParseRating(raw) == RatingUnknown:
			res.Unrecognized[raw]++
		}
	}
	return res
}
