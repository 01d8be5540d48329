package csat

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/godilite/eloca-metrics/internal/apperr"
	"github.com/godilite/eloca-metrics/internal/columns"
	"github.com/godilite/eloca-metrics/internal/sheet"
)

const (
	ReasonUnique        = "unique"
	ReasonKeptPositive  = "kept-positive"
	ReasonKeptFirst     = "kept-first-no-positive"
	ActionRemoveDupes   = "removed-duplicates"
	unkeyedTicketMarker = ""
)

// Response is one retained survey answer.
type Response struct {
	Row    int
	Ticket string
	Agent  string
	Raw    string
	Rating Rating
}

// Outcome is the decision taken for one ticket group. Row references are
// data-row indexes into the input table.
type Outcome struct {
	Ticket  string
	Kept    int
	Removed []int
	Reason  string
}

// AuditEntry records one group that lost rows.
type AuditEntry struct {
	Ticket         string
	Action         string
	Reason         string
	KeptRow        int
	KeptRating     string
	RemovedRows    []int
	RemovedRatings []string
}

// Result is the deduplicated survey.
type Result struct {
	Table     *sheet.Table
	Responses []Response
	Outcomes  []Outcome
	Audit     []AuditEntry
	Original  int
	Unkeyed   int
}

// Removed is the number of rows dropped.
func (r Result) Removed() int {
	return r.Original - r.Table.Len()
}

type Deduplicator struct {
	logger *zap.Logger
}

func NewDeduplicator(logger *zap.Logger) *Deduplicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduplicator{logger: logger.Named("csat-dedup")}
}

type row struct {
	index  int
	rating Rating
	raw    string
}

// Deduplicate keeps exactly one row per ticket. A group that holds a
// positive answer keeps its first positive row; otherwise the first row is
// kept. Rows without a ticket are never grouped. Retained rows keep their
// original relative order.
//
// When the ticket or rating column is not bound the table is returned
// unchanged together with a *apperr.SchemaError.
func (d *Deduplicator) Deduplicate(tbl *sheet.Table, binding columns.Binding) (Result, error) {
	res := Result{Table: tbl, Original: tbl.Len()}

	ticketCol := binding.Lookup(columns.Ticket)
	ratingCol := binding.Lookup(columns.Rating)
	for _, m := range []struct {
		match columns.Match
		field columns.Field
	}{{ticketCol, columns.Ticket}, {ratingCol, columns.Rating}} {
		if !m.match.Found {
			return res, fmt.Errorf("deduplicate: %w", &apperr.SchemaError{
				Source:   tbl.Source,
				Column:   m.field.Aliases[0],
				Required: true,
			})
		}
	}
	agentCol := binding.Lookup(columns.Agent)

	groups := make(map[string][]row)
	var order []string
	var keep []int

	for i := 0; i < tbl.Len(); i++ {
		ticket := sheet.Key(tbl.Cell(i, ticketCol.Index))
		raw := tbl.Cell(i, ratingCol.Index)
		r := row{index: i, rating: ParseRating(raw), raw: raw}

		if ticket == unkeyedTicketMarker {
			res.Unkeyed++
			keep = append(keep, i)
			continue
		}
		if _, seen := groups[ticket]; !seen {
			order = append(order, ticket)
		}
		groups[ticket] = append(groups[ticket], r)
	}

	for _, ticket := range order {
		outcome, entry := resolveGroup(ticket, groups[ticket])
		res.Outcomes = append(res.Outcomes, outcome)
		keep = append(keep, outcome.Kept)
		if entry != nil {
			res.Audit = append(res.Audit, *entry)
			d.logger.Debug("duplicate ticket resolved",
				zap.String("ticket", ticket),
				zap.String("reason", outcome.Reason),
				zap.Int("kept_row", outcome.Kept),
				zap.Ints("removed_rows", outcome.Removed))
		}
	}

	sort.Ints(keep)
	res.Table = tbl.Select(keep)
	res.Responses = make([]Response, 0, len(keep))
	for _, i := range keep {
		raw := tbl.Cell(i, ratingCol.Index)
		res.Responses = append(res.Responses, Response{
			Row:    i,
			Ticket: sheet.Key(tbl.Cell(i, ticketCol.Index)),
			Agent:  tbl.Cell(i, agentCol.Index),
			Raw:    raw,
			Rating: ParseRating(raw),
		})
	}

	d.logger.Info("csat deduplicated",
		zap.String("source", tbl.Source),
		zap.Int("original", res.Original),
		zap.Int("final", res.Table.Len()),
		zap.Int("removed", res.Removed()),
		zap.Int("unkeyed", res.Unkeyed))

	return res, nil
}

func resolveGroup(ticket string, rows []row) (Outcome, *AuditEntry) {
	if len(rows) == 1 {
		return Outcome{Ticket: ticket, Kept: rows[0].index, Reason: ReasonUnique}, nil
	}

	kept := 0
	reason := ReasonKeptFirst
	for i, r := range rows {
		if r.rating.Positive() {
			kept = i
			reason = ReasonKeptPositive
			break
		}
	}

	outcome := Outcome{Ticket: ticket, Kept: rows[kept].index, Reason: reason}
	entry := &AuditEntry{
		Ticket:     ticket,
		Action:     ActionRemoveDupes,
		Reason:     reason,
		KeptRow:    rows[kept].index,
		KeptRating: rows[kept].raw,
	}
	for i, r := range rows {
		if i == kept {
			continue
		}
		outcome.Removed = append(outcome.Removed, r.index)
		entry.RemovedRows = append(entry.RemovedRows, r.index)
		entry.RemovedRatings = append(entry.RemovedRatings, r.raw)
	}
	return outcome, entry
}
