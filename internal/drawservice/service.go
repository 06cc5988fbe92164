// Package drawservice exposes the draw engine over gRPC as
// deckdraw.v1.DrawService. Messages are google.protobuf.Struct values so
// the service needs no generated code.
package drawservice

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "deckdraw.v1.DrawService"

// Method names.
const (
	MethodDraw            = "Draw"
	MethodResolve         = "Resolve"
	MethodDistribution    = "Distribution"
	MethodListCollections = "ListCollections"
)

// DrawServiceServer is the server API for DrawService.
type DrawServiceServer interface {
	// Draw takes {collection} and returns {id, text, content, index, weight}.
	Draw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Resolve takes {text} and returns {text}.
	Resolve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Distribution takes {collection} and returns {slices: [{label, weight, probability}]}.
	Distribution(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListCollections takes {include_hidden} and returns {collections: [{name, hidden, size}]}.
	ListCollections(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDrawServiceServer registers srv on s.
func RegisterDrawServiceServer(s grpc.ServiceRegistrar, srv DrawServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryCall func(DrawServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DrawServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DrawServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes DrawService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DrawServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodDraw, Handler: unaryHandler(MethodDraw, DrawServiceServer.Draw)},
		{MethodName: MethodResolve, Handler: unaryHandler(MethodResolve, DrawServiceServer.Resolve)},
		{MethodName: MethodDistribution, Handler: unaryHandler(MethodDistribution, DrawServiceServer.Distribution)},
		{MethodName: MethodListCollections, Handler: unaryHandler(MethodListCollections, DrawServiceServer.ListCollections)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "deckdraw/v1/draw.proto",
}
