package report

import (
	"github.com/samber/lo"

	"github.com/godilite/eloca-metrics/internal/csat"
	"github.com/godilite/eloca-metrics/internal/metrics"
	"github.com/godilite/eloca-metrics/internal/timeparse"
)

const (
	colAgent          = "Analista"
	colTickets        = "Total Atendimentos"
	colDailyMean      = "Atendimentos/Dia"
	colTMA            = "TMA"
	colCSAT           = "CSAT (%)"
	colCSATResponses  = "Respostas CSAT"
	colResponseRate   = "% Resposta Pesquisa"
	colSLAFirst       = "SLA 1º Atendimento (%)"
	colSLAResolution  = "SLA Resolução (%)"
	colGoalTMA        = "Meta TMA (min)"
	colGoalCSAT       = "Meta CSAT (%)"
	colGoalResponse   = "Meta Resposta (%)"
	colMetTMA         = "Atingiu TMA"
	colMetCSAT        = "Atingiu CSAT"
	colMetResponse    = "Atingiu Resposta"
	colEstimated      = "Estimado"
	colDay            = "Data"
	colDayTickets     = "Chamados"
	colTMAMinutes     = "TMA (min)"
	colTMEMinutes     = "TME (min)"
	colTMRMinutes     = "TMR (min)"
	colNormalized     = "Avaliação Normalizada"
	colMetric         = "Métrica"
	colValue          = "Valor"
	colTicket         = "Chamado"
	colAction         = "Ação"
	colReason         = "Motivo"
	colKeptRow        = "Registro Mantido"
	colKeptRating     = "Avaliação Mantida"
	colRemovedRows    = "Registros Removidos"
	colRemovedRatings = "Avaliações Removidas"
)

// AgentGoalsTable renders the per-agent summary.
func AgentGoalsTable(rows []metrics.AgentMetricRow, goals metrics.Goals) Table {
	t := NewTable(TableAgentGoals,
		colAgent, colTickets, colDailyMean, colTMA, colCSAT, colCSATResponses, colResponseRate,
		colSLAFirst, colSLAResolution, colGoalTMA, colGoalCSAT, colGoalResponse,
		colMetTMA, colMetCSAT, colMetResponse, colEstimated)

	for _, r := range rows {
		estimated := r.SLAFirstResponse.Estimated || r.SLAResolution.Estimated
		t.Estimated = t.Estimated || estimated
		t.Rows = append(t.Rows, map[string]any{
			colAgent:          r.Agent,
			colTickets:        r.UniqueTickets,
			colDailyMean:      r.DailyMean,
			colTMA:            duration(r.MeanServiceSeconds),
			colCSAT:           r.CSATPercent,
			colCSATResponses:  r.CSATResponses,
			colResponseRate:   r.ResponseRate,
			colSLAFirst:       r.SLAFirstResponse.Value,
			colSLAResolution:  r.SLAResolution.Value,
			colGoalTMA:        goals.ServiceMinutes,
			colGoalCSAT:       goals.CSATPercent,
			colGoalResponse:   goals.ResponseRatePercent,
			colMetTMA:         r.MeetsServiceGoal,
			colMetCSAT:        r.MeetsCSATGoal,
			colMetResponse:    r.MeetsResponseGoal,
			colEstimated:      estimated,
		})
	}
	return t
}

// AreaOneTable renders the per-day service-time series.
func AreaOneTable(rows []metrics.DailyServiceRow) Table {
	t := NewTable(TableAreaOne, colDay, colDayTickets, colTMAMinutes, colTMEMinutes, colTMRMinutes, colCSAT)
	for _, r := range rows {
		t.Rows = append(t.Rows, map[string]any{
			colDay:        r.Day,
			colDayTickets: r.Tickets,
			colTMAMinutes: deref(r.ServiceMinutes),
			colTMEMinutes: deref(r.WaitMinutes),
			colTMRMinutes: deref(r.ResolutionMinutes),
			colCSAT:       deref(r.CSATPercent),
		})
	}
	return t
}

// AreaTwoTable renders the per-day SLA series.
func AreaTwoTable(rows []metrics.DailySLARow) Table {
	t := NewTable(TableAreaTwo, colDay, colDayTickets, colSLAFirst, colSLAResolution, colEstimated)
	for _, r := range rows {
		estimated := (r.FirstResponse != nil && r.FirstResponse.Estimated) ||
			(r.Resolution != nil && r.Resolution.Estimated)
		t.Estimated = t.Estimated || estimated
		t.Rows = append(t.Rows, map[string]any{
			colDay:           r.Day,
			colDayTickets:    r.Tickets,
			colSLAFirst:      percentValue(r.FirstResponse),
			colSLAResolution: percentValue(r.Resolution),
			colEstimated:     estimated,
		})
	}
	return t
}

// ChartTable renders a roster chart. SLA columns are included on request.
func ChartTable(name string, rows []metrics.AgentMetricRow, withSLA bool) Table {
	cols := []string{colAgent, colDailyMean, colTMA, colCSAT, colResponseRate}
	if withSLA {
		cols = append(cols, colSLAFirst, colSLAResolution, colEstimated)
	}
	t := NewTable(name, cols...)

	for _, r := range rows {
		row := map[string]any{
			colAgent:        r.Agent,
			colDailyMean:    r.DailyMean,
			colTMA:          duration(r.MeanServiceSeconds),
			colCSAT:         r.CSATPercent,
			colResponseRate: r.ResponseRate,
		}
		if withSLA {
			estimated := r.SLAFirstResponse.Estimated || r.SLAResolution.Estimated
			t.Estimated = t.Estimated || estimated
			row[colSLAFirst] = r.SLAFirstResponse.Value
			row[colSLAResolution] = r.SLAResolution.Value
			row[colEstimated] = estimated
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// CSATTable renders the deduplicated survey with its normalized rating.
func CSATTable(res csat.Result) Table {
	cols := append(append([]string{}, res.Table.Headers...), colNormalized)
	t := NewTable(TableCSAT, cols...)

	for i := 0; i < res.Table.Len(); i++ {
		row := res.Table.Record(i)
		if i < len(res.Responses) {
			row[colNormalized] = res.Responses[i].Rating.String()
		} else {
			row[colNormalized] = nil
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// CSATMetricsTable renders survey totals as a single row.
func CSATMetricsTable(m csat.Metrics) Table {
	cols := []string{"Total Respostas", colCSAT, "Positivas", "Negativas", "Neutras"}
	row := map[string]any{
		"Total Respostas": m.TotalResponses,
		colCSAT:           m.Score,
		"Positivas":       m.Positive,
		"Negativas":       m.Negative,
		"Neutras":         m.Neutral,
	}
	for _, r := range append(append([]csat.Rating{}, csat.Ratings...), csat.RatingUnknown) {
		cols = append(cols, r.String())
		row[r.String()] = m.Distribution[r]
	}

	t := NewTable(TableCSATMetrics, cols...)
	t.Rows = append(t.Rows, row)
	return t
}

// CSATReportTable renders the deduplication report as metric/value pairs.
func CSATReportTable(rep csat.Report) Table {
	t := NewTable(TableCSATReport, colMetric, colValue)
	add := func(metric string, value any) {
		t.Rows = append(t.Rows, map[string]any{colMetric: metric, colValue: value})
	}

	add("Registros originais", rep.OriginalRecords)
	add("Registros finais", rep.FinalRecords)
	add("Registros removidos", rep.RemovedRecords)
	add("Percentual removido", rep.RemovedPercent)
	add("Chamados duplicados", rep.DuplicatedTickets)
	add("Chamados únicos (original)", rep.UniqueTicketsBefore)
	add("Chamados únicos (final)", rep.UniqueTicketsAfter)
	for _, r := range append(append([]csat.Rating{}, csat.Ratings...), csat.RatingUnknown) {
		if n, ok := rep.RemovedByRating[r.String()]; ok {
			add("Removidas: "+r.String(), n)
		}
	}
	return t
}

// CSATAuditTable renders one row per ticket group that lost rows. Record
// numbers are 1-based data rows.
func CSATAuditTable(entries []csat.AuditEntry) Table {
	t := NewTable(TableCSATAudit, colTicket, colAction, colReason, colKeptRow, colKeptRating, colRemovedRows, colRemovedRatings)
	for _, e := range entries {
		t.Rows = append(t.Rows, map[string]any{
			colTicket:         e.Ticket,
			colAction:         e.Action,
			colReason:         e.Reason,
			colKeptRow:        e.KeptRow + 1,
			colKeptRating:     e.KeptRating,
			colRemovedRows:    lo.Map(e.RemovedRows, func(r int, _ int) any { return r + 1 }),
			colRemovedRatings: lo.Map(e.RemovedRatings, func(s string, _ int) any { return s }),
		})
	}
	return t
}

func duration(seconds float64) any {
	if s := timeparse.FormatSecondsToTime(seconds); s != "" {
		return s
	}
	return nil
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func percentValue(p *metrics.Percent) any {
	if p == nil {
		return nil
	}
	return p.Value
}
