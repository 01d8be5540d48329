package models

import "database/sql"

// TicketRecord is one cleaned row of the operational report. Durations are
// NaN when the cell did not parse; Day is empty when the open date did not.
type TicketRecord struct {
	TicketID          string
	Agent             string
	Day               string
	ServiceSeconds    float64
	WaitSeconds       float64
	ResolutionSeconds float64
	SLAFirstResponse  sql.NullBool
	SLAResolution     sql.NullBool
}

// SurveyRecord is one deduplicated survey answer joined to its agent.
type SurveyRecord struct {
	TicketID string
	Agent    string
	Rating   string
	Positive bool
}

type DailyServiceTimes struct {
	Day               string
	Tickets           int
	ServiceMinutes    sql.NullFloat64
	WaitMinutes       sql.NullFloat64
	ResolutionMinutes sql.NullFloat64
}

type DailySLA struct {
	Day                  string
	Tickets              int
	FirstResponsePercent sql.NullFloat64
	ResolutionPercent    sql.NullFloat64
}
