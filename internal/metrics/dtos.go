package metrics

import "github.com/godilite/eloca-metrics/internal/repository/models"

// Percent is a whole-number percentage. Estimated marks a configured
// default used because the source column was missing.
type Percent struct {
	Value     float64
	Estimated bool
}

type Goals struct {
	ServiceMinutes      float64
	CSATPercent         float64
	ResponseRatePercent float64
}

type Settings struct {
	Goals                Goals
	SLAFirstDefault      float64
	SLAResolutionDefault float64
	ChartOneRoster       []string
	ChartTwoRoster       []string
}

// DefaultSettings returns the goals and rosters used by the dashboard.
func DefaultSettings() Settings {
	return Settings{
		Goals: Goals{
			ServiceMinutes:      30,
			CSATPercent:         90,
			ResponseRatePercent: 30,
		},
		SLAFirstDefault:      90,
		SLAResolutionDefault: 93,
		ChartOneRoster:       []string{"Elô", "Kauan", "Pedro", "Mateus"},
		ChartTwoRoster:       []string{"Jonielson", "Rosana", "Marcos", "Sarah", "Graziele", "Virgilio"},
	}
}

// Input is the cleaned data for one aggregation run.
type Input struct {
	Tickets          []models.TicketRecord
	Surveys          []models.SurveyRecord
	HasSLAFirst      bool
	HasSLAResolution bool
}

// AgentMetricRow is one agent's summary. MeanServiceSeconds is NaN when no
// duration parsed.
type AgentMetricRow struct {
	Agent              string
	UniqueTickets      int
	TicketRows         int
	DailyMean          float64
	MeanServiceSeconds float64
	CSATResponses      int
	CSATPercent        float64
	ResponseRate       float64
	SLAFirstResponse   Percent
	SLAResolution      Percent
	MeetsServiceGoal   bool
	MeetsCSATGoal      bool
	MeetsResponseGoal  bool
}

// DailyServiceRow is one day of the service-time series. Nil means no
// value could be computed for that day.
type DailyServiceRow struct {
	Day               string
	Tickets           int
	ServiceMinutes    *float64
	WaitMinutes       *float64
	ResolutionMinutes *float64
	CSATPercent       *float64
}

// DailySLARow is one day of the SLA series.
type DailySLARow struct {
	Day           string
	Tickets       int
	FirstResponse *Percent
	Resolution    *Percent
}

type Result struct {
	Agents       []AgentMetricRow
	ServiceTimes []DailyServiceRow
	SLA          []DailySLARow
	ChartOne     []AgentMetricRow
	ChartTwo     []AgentMetricRow
	Goals        Goals
	Warnings     []string
}
