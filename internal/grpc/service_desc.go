package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is described by hand over well-known types: tables are
// schemaless, so a Struct carries them as JSON-shaped values.
const (
	ServiceName = "eloca.dashboard.v1.Dashboard"

	methodGetTables       = "/" + ServiceName + "/GetTables"
	methodGetTable        = "/" + ServiceName + "/GetTable"
	methodInvalidateCache = "/" + ServiceName + "/InvalidateCache"
)

// DashboardServer is the server API for the Dashboard service.
type DashboardServer interface {
	GetTables(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetTable(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	InvalidateCache(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// RegisterDashboardServer registers srv on s.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTables", Handler: getTablesHandler},
		{MethodName: "GetTable", Handler: getTableHandler},
		{MethodName: "InvalidateCache", Handler: invalidateCacheHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eloca/dashboard/v1/dashboard.proto",
}

func getTablesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetTables(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetTables}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).GetTables(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getTableHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetTable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetTable}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).GetTable(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func invalidateCacheHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).InvalidateCache(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodInvalidateCache}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).InvalidateCache(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// DashboardClient is the client API for the Dashboard service.
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

func (c *DashboardClient) GetTables(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetTables, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) GetTable(ctx context.Context, name string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetTable, wrapperspb.String(name), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) InvalidateCache(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, methodInvalidateCache, &emptypb.Empty{}, new(emptypb.Empty), opts...)
}
