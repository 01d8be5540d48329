package mocks

import (
	"context"
	"errors"

	"github.com/godilite/eloca-metrics/internal/metrics"
	"github.com/godilite/eloca-metrics/internal/sheet"
	"github.com/godilite/eloca-metrics/internal/source"
)

// MockFetcher is a mock implementation of the Fetcher interface.
type MockFetcher struct {
	FetchFunc func(ctx context.Context, src source.Source) ([]byte, error)
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, src source.Source) ([]byte, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, src)
	}
	return nil, errors.New("FetchFunc not implemented")
}

// MockLoader is a mock implementation of the Loader interface.
type MockLoader struct {
	LoadFunc func(source string, data []byte, sheetName string) (*sheet.Table, error)
}

// Load implements the Loader interface
func (m *MockLoader) Load(source string, data []byte, sheetName string) (*sheet.Table, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(source, data, sheetName)
	}
	return nil, errors.New("LoadFunc not implemented")
}

// MockAggregator is a mock implementation of the Aggregator interface.
type MockAggregator struct {
	AggregateFunc func(ctx context.Context, in metrics.Input) (metrics.Result, error)
}

// Aggregate implements the Aggregator interface
func (m *MockAggregator) Aggregate(ctx context.Context, in metrics.Input) (metrics.Result, error) {
	if m.AggregateFunc != nil {
		return m.AggregateFunc(ctx, in)
	}
	return metrics.Result{}, errors.New("AggregateFunc not implemented")
}
