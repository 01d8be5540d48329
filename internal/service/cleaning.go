package service

import (
	"database/sql"
	"math"
	"strconv"
	"strings"

	"github.com/godilite/eloca-metrics/internal/apperr"
	"github.com/godilite/eloca-metrics/internal/columns"
	"github.com/godilite/eloca-metrics/internal/repository/models"
	"github.com/godilite/eloca-metrics/internal/sheet"
	"github.com/godilite/eloca-metrics/internal/timeparse"
)

var (
	slaMet = map[string]bool{
		"em dia": true, "no prazo": true, "dentro do prazo": true, "sim": true, "s": true, "true": true, "ok": true,
	}
	slaMissed = map[string]bool{
		"atrasado": true, "fora do prazo": true, "vencido": true, "nao": true, "n": true, "false": true,
	}
)

// cleaned is the operational table coerced into records.
type cleaned struct {
	records          []models.TicketRecord
	hasSLAFirst      bool
	hasSLAResolution bool
	parseErrors      []*apperr.ParseError
}

// cleanOperational coerces every operational row. Cells that fail coercion
// become NaN (durations), an empty day (dates) or an invalid flag (SLA)
// and are reported as parse errors; the row itself is always kept.
func cleanOperational(tbl *sheet.Table, b columns.Binding) cleaned {
	out := cleaned{
		records:          make([]models.TicketRecord, 0, tbl.Len()),
		hasSLAFirst:      b.Has(columns.SLAFirstResponse),
		hasSLAResolution: b.Has(columns.SLAResolution),
	}

	ticketCol := b.Lookup(columns.Ticket)
	agentCol := b.Lookup(columns.Agent)

	for i := 0; i < tbl.Len(); i++ {
		rowKey := sheet.Key(tbl.Cell(i, ticketCol.Index))
		fail := func(f columns.Field, value string) {
			out.parseErrors = append(out.parseErrors, &apperr.ParseError{
				Source: tbl.Source,
				Column: b.Lookup(f).Header,
				Row:    i,
				RowKey: rowKey,
				Value:  value,
			})
		}

		duration := func(f columns.Field) float64 {
			m := b.Lookup(f)
			raw := tbl.Cell(i, m.Index)
			if !m.Found || raw == "" {
				return math.NaN()
			}
			secs := timeparse.ParseDurationToSeconds(raw)
			if math.IsNaN(secs) {
				fail(f, raw)
			}
			return secs
		}

		flag := func(f columns.Field) sql.NullBool {
			m := b.Lookup(f)
			raw := tbl.Cell(i, m.Index)
			if !m.Found || raw == "" {
				return sql.NullBool{}
			}
			v, ok := parseSLAFlag(raw)
			if !ok {
				fail(f, raw)
			}
			return v
		}

		rec := models.TicketRecord{
			TicketID:          rowKey,
			Agent:             strings.TrimSpace(tbl.Cell(i, agentCol.Index)),
			ServiceSeconds:    duration(columns.ServiceTime),
			WaitSeconds:       duration(columns.WaitTime),
			ResolutionSeconds: duration(columns.ResolutionTime),
			SLAFirstResponse:  flag(columns.SLAFirstResponse),
			SLAResolution:     flag(columns.SLAResolution),
		}

		if m := b.Lookup(columns.OpenedAt); m.Found {
			if raw := tbl.Cell(i, m.Index); raw != "" {
				if t, ok := timeparse.ParseDate(raw); ok {
					rec.Day = timeparse.Day(t)
				} else {
					fail(columns.OpenedAt, raw)
				}
			}
		}

		out.records = append(out.records, rec)
	}
	return out
}

// parseSLAFlag reads a compliance cell. Text labels and 0/1 style numbers
// are accepted; a fraction counts as met from 0.5 up.
func parseSLAFlag(raw string) (sql.NullBool, bool) {
	norm := columns.Normalize(raw)
	switch {
	case slaMet[norm]:
		return sql.NullBool{Bool: true, Valid: true}, true
	case slaMissed[norm]:
		return sql.NullBool{Bool: false, Valid: true}, true
	}

	n, err := strconv.ParseFloat(strings.TrimSuffix(strings.ReplaceAll(norm, ",", "."), "%"), 64)
	if err != nil || n < 0 {
		return sql.NullBool{}, false
	}
	if n > 1 {
		n /= 100
	}
	if n > 1 {
		return sql.NullBool{}, false
	}
	return sql.NullBool{Bool: n >= 0.5, Valid: true}, true
}

// surveyRecords joins each retained survey answer to the agent who handled
// the ticket. The survey's own agent column is used when the ticket is not
// in the operational report.
func surveyRecords(responses []surveyResponse, agentByTicket map[string]string) []models.SurveyRecord {
	out := make([]models.SurveyRecord, 0, len(responses))
	for _, r := range responses {
		agent, ok := agentByTicket[r.ticket]
		if !ok || agent == "" {
			agent = strings.TrimSpace(r.agent)
		}
		out = append(out, models.SurveyRecord{
			TicketID: r.ticket,
			Agent:    agent,
			Rating:   r.rating,
			Positive: r.positive,
		})
	}
	return out
}

type surveyResponse struct {
	ticket   string
	agent    string
	rating   string
	positive bool
}

// agentsByTicket maps each ticket to the first agent seen for it.
func agentsByTicket(records []models.TicketRecord) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		if r.TicketID == "" || r.Agent == "" {
			continue
		}
		if _, ok := out[r.TicketID]; !ok {
			out[r.TicketID] = r.Agent
		}
	}
	return out
}
