package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/godilite/eloca-metrics/internal/columns"
	"github.com/godilite/eloca-metrics/internal/repository/models"
	"github.com/godilite/eloca-metrics/internal/timeparse"
)

const storeTimeout = 5 * time.Second

var ErrStorageFailure = errors.New("storage failure")

// Aggregator turns cleaned tickets and surveys into the dashboard tables.
type Aggregator struct {
	store    DailyStore
	settings Settings
	logger   *zap.Logger

	// The store holds one run at a time.
	mu sync.Mutex
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(store DailyStore, settings Settings, logger *zap.Logger) *Aggregator {
	if store == nil {
		panic("store must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:    store,
		settings: settings,
		logger:   logger.Named("aggregator"),
	}
}

// Aggregate computes every metric table for one run.
func (a *Aggregator) Aggregate(ctx context.Context, in Input) (Result, error) {
	res := Result{Goals: a.settings.Goals}

	if !in.HasSLAFirst {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"SLA 1º Atendimento column missing: using default %.0f%% (estimated)", a.settings.SLAFirstDefault))
	}
	if !in.HasSLAResolution {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"SLA Resolução column missing: using default %.0f%% (estimated)", a.settings.SLAResolutionDefault))
	}

	surveysByAgent := lo.GroupBy(in.Surveys, func(s models.SurveyRecord) string { return agentKey(s.Agent) })
	res.Agents = a.agentSummaries(in, surveysByAgent)
	res.ChartOne = a.rosterRows(a.settings.ChartOneRoster, res.Agents, surveysByAgent, in)
	res.ChartTwo = a.rosterRows(a.settings.ChartTwoRoster, res.Agents, surveysByAgent, in)

	a.mu.Lock()
	defer a.mu.Unlock()

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := a.store.Stage(storeCtx, in.Tickets); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	serviceDays, err := a.store.GetServiceTimesByDay(storeCtx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	slaDays, err := a.store.GetSLAByDay(storeCtx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	res.ServiceTimes = serviceSeries(serviceDays, csatByDay(in))
	res.SLA = a.slaSeries(slaDays, in)

	a.logger.Info("metrics aggregated",
		zap.Int("agents", len(res.Agents)),
		zap.Int("days", len(res.ServiceTimes)),
		zap.Int("tickets", len(in.Tickets)),
		zap.Int("surveys", len(in.Surveys)))

	return res, nil
}

type agentAcc struct {
	name       string
	rows       int
	tickets    map[string]struct{}
	daily      map[string]map[string]struct{}
	service    []float64
	slaFirst   flagCount
	slaResolve flagCount
}

type flagCount struct {
	met, valid int
}

func (f *flagCount) observe(valid, met bool) {
	if !valid {
		return
	}
	f.valid++
	if met {
		f.met++
	}
}

func (f flagCount) percent() float64 {
	return ratio(f.met, f.valid)
}

func (a *Aggregator) agentSummaries(in Input, surveys map[string][]models.SurveyRecord) []AgentMetricRow {
	accs := make(map[string]*agentAcc)
	skipped := 0

	for _, t := range in.Tickets {
		key := agentKey(t.Agent)
		if key == "" {
			skipped++
			continue
		}
		acc, ok := accs[key]
		if !ok {
			acc = &agentAcc{
				name:    strings.TrimSpace(t.Agent),
				tickets: make(map[string]struct{}),
				daily:   make(map[string]map[string]struct{}),
			}
			accs[key] = acc
		}

		acc.rows++
		acc.service = append(acc.service, t.ServiceSeconds)
		acc.slaFirst.observe(t.SLAFirstResponse.Valid, t.SLAFirstResponse.Bool)
		acc.slaResolve.observe(t.SLAResolution.Valid, t.SLAResolution.Bool)
		if t.TicketID == "" {
			continue
		}
		acc.tickets[t.TicketID] = struct{}{}
		if t.Day != "" {
			if acc.daily[t.Day] == nil {
				acc.daily[t.Day] = make(map[string]struct{})
			}
			acc.daily[t.Day][t.TicketID] = struct{}{}
		}
	}

	if skipped > 0 {
		a.logger.Warn("ticket rows without agent left out of agent summaries", zap.Int("rows", skipped))
	}

	rows := make([]AgentMetricRow, 0, len(accs))
	for key, acc := range accs {
		rows = append(rows, a.finalize(acc, surveys[key], in))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Agent < rows[j].Agent })
	return rows
}

func (a *Aggregator) finalize(acc *agentAcc, surveys []models.SurveyRecord, in Input) AgentMetricRow {
	positive := lo.CountBy(surveys, func(s models.SurveyRecord) bool { return s.Positive })
	perDay := lo.MapToSlice(acc.daily, func(_ string, tickets map[string]struct{}) float64 {
		return float64(len(tickets))
	})

	row := AgentMetricRow{
		Agent:              acc.name,
		UniqueTickets:      len(acc.tickets),
		TicketRows:         acc.rows,
		DailyMean:          round2(meanOrZero(perDay)),
		MeanServiceSeconds: timeparse.Mean(acc.service),
		CSATResponses:      len(surveys),
		CSATPercent:        ratio(positive, len(surveys)),
		ResponseRate:       ratio(len(surveys), acc.rows),
		SLAFirstResponse:   a.slaPercent(in.HasSLAFirst, acc.slaFirst, a.settings.SLAFirstDefault),
		SLAResolution:      a.slaPercent(in.HasSLAResolution, acc.slaResolve, a.settings.SLAResolutionDefault),
	}
	a.applyGoals(&row)
	return row
}

func (a *Aggregator) applyGoals(row *AgentMetricRow) {
	g := a.settings.Goals
	row.MeetsServiceGoal = !math.IsNaN(row.MeanServiceSeconds) && row.MeanServiceSeconds <= g.ServiceMinutes*60
	row.MeetsCSATGoal = row.CSATResponses > 0 && row.CSATPercent >= g.CSATPercent
	row.MeetsResponseGoal = row.ResponseRate >= g.ResponseRatePercent
}

func (a *Aggregator) slaPercent(hasColumn bool, f flagCount, fallback float64) Percent {
	if !hasColumn {
		return Percent{Value: fallback, Estimated: true}
	}
	return Percent{Value: f.percent()}
}

// rosterRows picks one row per roster member. A member matches an agent
// with the same normalized name, or whose name starts with the member's
// name followed by a space ("Elô" matches "Elô Souza"). Members without
// tickets get an empty row that still carries their survey CSAT.
func (a *Aggregator) rosterRows(roster []string, agents []AgentMetricRow, surveys map[string][]models.SurveyRecord, in Input) []AgentMetricRow {
	rows := make([]AgentMetricRow, 0, len(roster))
	for _, member := range roster {
		want := agentKey(member)
		found, ok := lo.Find(agents, func(r AgentMetricRow) bool { return agentKey(r.Agent) == want })
		if !ok {
			found, ok = lo.Find(agents, func(r AgentMetricRow) bool {
				return strings.HasPrefix(agentKey(r.Agent), want+" ")
			})
		}
		if !ok {
			own := append([]models.SurveyRecord(nil), surveys[want]...)
			for key, recs := range surveys {
				if strings.HasPrefix(key, want+" ") {
					own = append(own, recs...)
				}
			}
			positive := lo.CountBy(own, func(s models.SurveyRecord) bool { return s.Positive })
			found = AgentMetricRow{
				CSATResponses:      len(own),
				CSATPercent:        ratio(positive, len(own)),
				MeanServiceSeconds: math.NaN(),
				SLAFirstResponse:   a.slaPercent(in.HasSLAFirst, flagCount{}, a.settings.SLAFirstDefault),
				SLAResolution:      a.slaPercent(in.HasSLAResolution, flagCount{}, a.settings.SLAResolutionDefault),
			}
			a.applyGoals(&found)
		}
		found.Agent = member
		rows = append(rows, found)
	}
	return rows
}

func (a *Aggregator) slaSeries(days []models.DailySLA, in Input) []DailySLARow {
	out := make([]DailySLARow, 0, len(days))
	for _, d := range days {
		out = append(out, DailySLARow{
			Day:           d.Day,
			Tickets:       d.Tickets,
			FirstResponse: dailyPercent(in.HasSLAFirst, d.FirstResponsePercent.Valid, d.FirstResponsePercent.Float64, a.settings.SLAFirstDefault),
			Resolution:    dailyPercent(in.HasSLAResolution, d.ResolutionPercent.Valid, d.ResolutionPercent.Float64, a.settings.SLAResolutionDefault),
		})
	}
	return out
}

func dailyPercent(hasColumn, valid bool, value, fallback float64) *Percent {
	switch {
	case !hasColumn:
		return &Percent{Value: fallback, Estimated: true}
	case !valid:
		return nil
	default:
		return &Percent{Value: math.Round(value)}
	}
}

func serviceSeries(days []models.DailyServiceTimes, csat map[string]*float64) []DailyServiceRow {
	out := make([]DailyServiceRow, 0, len(days))
	for _, d := range days {
		out = append(out, DailyServiceRow{
			Day:               d.Day,
			Tickets:           d.Tickets,
			ServiceMinutes:    minutes(d.ServiceMinutes.Valid, d.ServiceMinutes.Float64),
			WaitMinutes:       minutes(d.WaitMinutes.Valid, d.WaitMinutes.Float64),
			ResolutionMinutes: minutes(d.ResolutionMinutes.Valid, d.ResolutionMinutes.Float64),
			CSATPercent:       csat[d.Day],
		})
	}
	return out
}

// csatByDay places each survey answer on the open day of its ticket.
func csatByDay(in Input) map[string]*float64 {
	ticketDay := make(map[string]string)
	for _, t := range in.Tickets {
		if t.TicketID == "" || t.Day == "" {
			continue
		}
		if _, ok := ticketDay[t.TicketID]; !ok {
			ticketDay[t.TicketID] = t.Day
		}
	}

	type tally struct{ positive, total int }
	perDay := make(map[string]*tally)
	for _, s := range in.Surveys {
		day, ok := ticketDay[s.TicketID]
		if !ok {
			continue
		}
		if perDay[day] == nil {
			perDay[day] = &tally{}
		}
		perDay[day].total++
		if s.Positive {
			perDay[day].positive++
		}
	}

	return lo.MapValues(perDay, func(t *tally, _ string) *float64 {
		return lo.ToPtr(ratio(t.positive, t.total))
	})
}

func minutes(valid bool, v float64) *float64 {
	if !valid {
		return nil
	}
	return lo.ToPtr(round2(v))
}

func agentKey(name string) string {
	return columns.Normalize(name)
}

// ratio returns num/den as a whole percentage, 0 for a zero denominator.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num) / float64(den) * 100)
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
