package mocks

import (
	"context"
	"errors"

	"github.com/godilite/eloca-metrics/internal/report"
)

// MockPipeline is a mock implementation of the Pipeline interface.
type MockPipeline struct {
	RunFunc func(ctx context.Context) (*report.Bag, error)
}

// Run implements the Pipeline interface
func (m *MockPipeline) Run(ctx context.Context) (*report.Bag, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil, errors.New("RunFunc not implemented")
}
