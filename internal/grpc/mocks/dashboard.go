package mocks

import (
	"context"
	"errors"

	"github.com/godilite/eloca-metrics/internal/report"
)

// MockDashboard is a mock implementation of the Dashboard interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockDashboard struct {
	BagFunc        func(ctx context.Context) (*report.Bag, error)
	TableFunc      func(ctx context.Context, name string) (report.Table, error)
	InvalidateFunc func(ctx context.Context) error
}

// Bag implements the Dashboard interface
func (m *MockDashboard) Bag(ctx context.Context) (*report.Bag, error) {
	if m.BagFunc != nil {
		return m.BagFunc(ctx)
	}
	return nil, errors.New("BagFunc not implemented")
}

// Table implements the Dashboard interface
func (m *MockDashboard) Table(ctx context.Context, name string) (report.Table, error) {
	if m.TableFunc != nil {
		return m.TableFunc(ctx, name)
	}
	return report.Table{}, errors.New("TableFunc not implemented")
}

// Invalidate implements the Dashboard interface
func (m *MockDashboard) Invalidate(ctx context.Context) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx)
	}
	return nil
}
