package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/eloca-metrics/internal/report"
)

const bagKey = "eloca:tables:v1"

var ErrUnknownTable = errors.New("unknown table")

// Service serves the table bag of the last pipeline run, recomputing it
// once the cached copy expires or is invalidated.
type Service struct {
	pipeline Pipeline
	cache    Cacher
	sf       singleflight.Group
	ttl      time.Duration
	logger   *zap.Logger
}

func NewService(pipeline Pipeline, cache Cacher, ttl time.Duration, logger *zap.Logger) *Service {
	if pipeline == nil {
		panic("pipeline must not be nil")
	}
	if cache == nil {
		panic("cache must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pipeline: pipeline,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.Named("dashboard"),
	}
}

// Bag returns every table.
func (s *Service) Bag(ctx context.Context) (*report.Bag, error) {
	return FindAndCache(ctx, s.cache, &s.sf, bagKey, s.ttl, s.logger, s.pipeline.Run)
}

// Table returns one table by name.
func (s *Service) Table(ctx context.Context, name string) (report.Table, error) {
	bag, err := s.Bag(ctx)
	if err != nil {
		return report.Table{}, err
	}
	t, ok := bag.Table(name)
	if !ok {
		return report.Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// Invalidate drops the cached bag so the next read runs the pipeline.
func (s *Service) Invalidate(ctx context.Context) error {
	s.sf.Forget(bagKey)
	if err := s.cache.Delete(ctx, bagKey); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	s.logger.Info("cache invalidated", zap.String("key", bagKey))
	return nil
}
