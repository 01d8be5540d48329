package grpc

import (
	"context"

	"github.com/godilite/eloca-metrics/internal/report"
)

// Dashboard serves the computed tables.
type Dashboard interface {
	Bag(ctx context.Context) (*report.Bag, error)
	Table(ctx context.Context, name string) (report.Table, error)
	Invalidate(ctx context.Context) error
}
