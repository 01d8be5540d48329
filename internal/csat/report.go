package csat

import "github.com/godilite/eloca-metrics/internal/sheet"

// Report describes what deduplication did to the survey.
type Report struct {
	OriginalRecords     int
	FinalRecords        int
	RemovedRecords      int
	RemovedPercent      float64
	DuplicatedTickets   int
	UniqueTicketsBefore int
	UniqueTicketsAfter  int
	RemovedByRating     map[string]int
}

// BuildReport derives the deduplication report from a Result.
func BuildReport(res Result) Report {
	rep := Report{
		OriginalRecords:     res.Original,
		FinalRecords:        res.Table.Len(),
		RemovedRecords:      res.Removed(),
		DuplicatedTickets:   len(res.Audit),
		UniqueTicketsBefore: len(res.Outcomes),
		RemovedByRating:     make(map[string]int),
	}
	if rep.OriginalRecords > 0 {
		rep.RemovedPercent = round2(float64(rep.RemovedRecords) / float64(rep.OriginalRecords) * 100)
	}

	after := make(map[string]struct{}, len(res.Responses))
	for _, r := range res.Responses {
		if r.Ticket != "" {
			after[sheet.Key(r.Ticket)] = struct{}{}
		}
	}
	rep.UniqueTicketsAfter = len(after)

	for _, entry := range res.Audit {
		for _, raw := range entry.RemovedRatings {
			rep.RemovedByRating[ParseRating(raw).String()]++
		}
	}
	return rep
}
