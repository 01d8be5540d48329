package mocks

import (
	"context"
	"errors"

	"github.com/godilite/eloca-metrics/internal/repository/models"
)

// MockDailyStore is a function-based mock of the DailyStore interface.
type MockDailyStore struct {
	StageFunc                func(ctx context.Context, records []models.TicketRecord) error
	GetServiceTimesByDayFunc func(ctx context.Context) ([]models.DailyServiceTimes, error)
	GetSLAByDayFunc          func(ctx context.Context) ([]models.DailySLA, error)
}

// Stage implements the DailyStore interface
func (m *MockDailyStore) Stage(ctx context.Context, records []models.TicketRecord) error {
	if m.StageFunc != nil {
		return m.StageFunc(ctx, records)
	}
	return nil
}

// GetServiceTimesByDay implements the DailyStore interface
func (m *MockDailyStore) GetServiceTimesByDay(ctx context.Context) ([]models.DailyServiceTimes, error) {
	if m.GetServiceTimesByDayFunc != nil {
		return m.GetServiceTimesByDayFunc(ctx)
	}
	return nil, errors.New("GetServiceTimesByDayFunc not implemented")
}

// GetSLAByDay implements the DailyStore interface
func (m *MockDailyStore) GetSLAByDay(ctx context.Context) ([]models.DailySLA, error) {
	if m.GetSLAByDayFunc != nil {
		return m.GetSLAByDayFunc(ctx)
	}
	return nil, errors.New("GetSLAByDayFunc not implemented")
}
