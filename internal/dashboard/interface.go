package dashboard

import (
	"context"
	"time"

	"github.com/godilite/eloca-metrics/internal/report"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Pipeline produces a fresh table bag.
type Pipeline interface {
	Run(ctx context.Context) (*report.Bag, error)
}
