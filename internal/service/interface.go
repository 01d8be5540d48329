package service

import (
	"context"

	"github.com/godilite/eloca-metrics/internal/metrics"
	"github.com/godilite/eloca-metrics/internal/sheet"
	"github.com/godilite/eloca-metrics/internal/source"
)

// Fetcher retrieves the raw bytes of one report.
type Fetcher interface {
	Fetch(ctx context.Context, src source.Source) ([]byte, error)
}

// Loader turns raw report bytes into a table.
type Loader interface {
	Load(source string, data []byte, sheetName string) (*sheet.Table, error)
}

// Aggregator computes the operational metric tables.
type Aggregator interface {
	Aggregate(ctx context.Context, in metrics.Input) (metrics.Result, error)
}
