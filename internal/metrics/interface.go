package metrics

import (
	"context"

	"github.com/godilite/eloca-metrics/internal/repository/models"
)

// DailyStore stages a run's tickets and answers the per-day queries.
type DailyStore interface {
	Stage(ctx context.Context, records []models.TicketRecord) error
	GetServiceTimesByDay(ctx context.Context) ([]models.DailyServiceTimes, error)
	GetSLAByDay(ctx context.Context) ([]models.DailySLA, error)
}
