package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/godilite/eloca-metrics/internal/apperr"
	"github.com/godilite/eloca-metrics/internal/dashboard"
	"github.com/godilite/eloca-metrics/internal/metrics"
)

const defaultGRPCTimeout = 2 * time.Minute

type GRPCHandlers struct {
	dashboard Dashboard
	logger    *zap.Logger
	timeout   time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. timeout bounds a request,
// including a pipeline run on a cache miss.
func NewGRPCHandlers(dash Dashboard, logger *zap.Logger, timeout time.Duration) *GRPCHandlers {
	if dash == nil {
		panic("nil Dashboard provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultGRPCTimeout
	}
	return &GRPCHandlers{
		dashboard: dash,
		logger:    logger.Named("grpc-handler"),
		timeout:   timeout,
	}
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, apperr.ErrNoData):
		s.logger.Info("no data available", zap.String("op", op))
		return status.Error(codes.NotFound, "no data available from any source")
	case errors.Is(err, dashboard.ErrUnknownTable):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, metrics.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "staging database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) GetTables(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bag, err := s.dashboard.Bag(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "GetTables", err)
	}
	return toStruct(bag)
}

func (s *GRPCHandlers) GetTable(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	name := strings.TrimSpace(req.GetValue())
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "table name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tbl, err := s.dashboard.Table(ctx, name)
	if err != nil {
		return nil, s.handleError(ctx, "GetTable", err)
	}
	return toStruct(tbl)
}

func (s *GRPCHandlers) InvalidateCache(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.dashboard.Invalidate(ctx); err != nil {
		return nil, s.handleError(ctx, "InvalidateCache", err)
	}
	return &emptypb.Empty{}, nil
}

// toStruct converts a JSON-tagged value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
