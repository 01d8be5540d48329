package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/godilite/eloca-metrics/internal/repository/models"
)

// DailyMetricsRepository stages one run's tickets in SQLite and computes the
// per-day series in SQL. AVG skips NULL, which is how unparsed durations
// stay out of the means.
type DailyMetricsRepository struct {
	db *sql.DB
}

func NewDailyMetricsRepository(db *sql.DB) *DailyMetricsRepository {
	return &DailyMetricsRepository{db: db}
}

const stagingSchema = `
	CREATE TABLE IF NOT EXISTS staged_tickets (
		ticket_id          TEXT,
		agent              TEXT,
		day                TEXT,
		service_seconds    REAL,
		wait_seconds       REAL,
		resolution_seconds REAL,
		sla_first          INTEGER,
		sla_resolution     INTEGER
	)
`

// Stage replaces the staged tickets with records.
func (r *DailyMetricsRepository) Stage(ctx context.Context, records []models.TicketRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin Stage: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, stagingSchema); err != nil {
		return fmt.Errorf("create staged_tickets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM staged_tickets`); err != nil {
		return fmt.Errorf("clear staged_tickets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO staged_tickets
			(ticket_id, agent, day, service_seconds, wait_seconds, resolution_seconds, sla_first, sla_resolution)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare Stage insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			nullString(rec.TicketID),
			nullString(rec.Agent),
			nullString(rec.Day),
			nullFloat(rec.ServiceSeconds),
			nullFloat(rec.WaitSeconds),
			nullFloat(rec.ResolutionSeconds),
			nullBool(rec.SLAFirstResponse),
			nullBool(rec.SLAResolution),
		); err != nil {
			return fmt.Errorf("insert staged ticket %q: %w", rec.TicketID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit Stage: %w", err)
	}
	return nil
}

// GetServiceTimesByDay returns unique tickets and mean handling, waiting and
// resolution minutes per day. Undated rows are excluded.
func (r *DailyMetricsRepository) GetServiceTimesByDay(ctx context.Context) ([]models.DailyServiceTimes, error) {
	const query = `
		SELECT
			day,
			COUNT(DISTINCT ticket_id) AS tickets,
			AVG(service_seconds) / 60.0 AS tma,
			AVG(wait_seconds) / 60.0 AS tme,
			AVG(resolution_seconds) / 60.0 AS tmr
		FROM staged_tickets
		WHERE day IS NOT NULL
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query GetServiceTimesByDay: %w", err)
	}
	defer rows.Close()

	var results []models.DailyServiceTimes
	for rows.Next() {
		var d models.DailyServiceTimes
		if err := rows.Scan(&d.Day, &d.Tickets, &d.ServiceMinutes, &d.WaitMinutes, &d.ResolutionMinutes); err != nil {
			return nil, fmt.Errorf("scan GetServiceTimesByDay row: %w", err)
		}
		results = append(results, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetServiceTimesByDay: %w", err)
	}
	return results, nil
}

// GetSLAByDay returns unique tickets and the share of on-time first
// responses and resolutions per day, in percent.
func (r *DailyMetricsRepository) GetSLAByDay(ctx context.Context) ([]models.DailySLA, error) {
	const query = `
		SELECT
			day,
			COUNT(DISTINCT ticket_id) AS tickets,
			AVG(sla_first) * 100.0 AS sla_first_pct,
			AVG(sla_resolution) * 100.0 AS sla_resolution_pct
		FROM staged_tickets
		WHERE day IS NOT NULL
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query GetSLAByDay: %w", err)
	}
	defer rows.Close()

	var results []models.DailySLA
	for rows.Next() {
		var d models.DailySLA
		if err := rows.Scan(&d.Day, &d.Tickets, &d.FirstResponsePercent, &d.ResolutionPercent); err != nil {
			return nil, fmt.Errorf("scan GetSLAByDay row: %w", err)
		}
		results = append(results, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetSLAByDay: %w", err)
	}
	return results, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func nullBool(b sql.NullBool) any {
	if !b.Valid {
		return nil
	}
	if b.Bool {
		return 1
	}
	return 0
}
