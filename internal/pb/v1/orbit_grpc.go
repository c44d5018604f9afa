package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// OrbitServiceName is the fully-qualified gRPC service name.
const OrbitServiceName = "goldenorbit.v1.OrbitService"

// Capture sources accepted by OrbitService.Capture.
const (
	SourceReference = "reference"
	SourceGold      = "gold"
	SourceCurrent   = "current"
)

// Display states returned by OrbitService.ToggleDisplay.
const (
	DisplayHidden = "hidden"
	DisplayShown  = "shown"
)

// OrbitServiceServer is the server API for OrbitService.
type OrbitServiceServer interface {
	// GetReference returns the canonical reference table.
	GetReference(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// ListMonitors returns the controlled monitors with their readings and references.
	ListMonitors(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// Capture replaces the table from a live source (reference, gold or current).
	Capture(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// Zero replaces the table with zero references for every monitor.
	Zero(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// Load replaces the table from an orbit file.
	Load(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// Save writes the table to an orbit file and returns the written path.
	Save(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// Update merges known entries without propagating them.
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Propagate writes the table onto the monitors.
	Propagate(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	// ToggleDisplay flips the golden orbit curve and returns the new state.
	ToggleDisplay(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
}

// UnimplementedOrbitServiceServer answers Unimplemented to every call.
// Embed it to stay forward compatible.
type UnimplementedOrbitServiceServer struct{}

func (UnimplementedOrbitServiceServer) GetReference(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetReference not implemented")
}

func (UnimplementedOrbitServiceServer) ListMonitors(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMonitors not implemented")
}

func (UnimplementedOrbitServiceServer) Capture(
	context.Context,
	*wrapperspb.StringValue,
) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Capture not implemented")
}

func (UnimplementedOrbitServiceServer) Zero(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Zero not implemented")
}

func (UnimplementedOrbitServiceServer) Load(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Load not implemented")
}

func (UnimplementedOrbitServiceServer) Save(
	context.Context,
	*wrapperspb.StringValue,
) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Save not implemented")
}

func (UnimplementedOrbitServiceServer) Update(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Update not implemented")
}

func (UnimplementedOrbitServiceServer) Propagate(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Propagate not implemented")
}

func (UnimplementedOrbitServiceServer) ToggleDisplay(
	context.Context,
	*emptypb.Empty,
) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleDisplay not implemented")
}

// OrbitServiceDesc describes OrbitService for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // grpc keeps a pointer to the descriptor.
var OrbitServiceDesc = grpc.ServiceDesc{
	ServiceName: OrbitServiceName,
	HandlerType: (*OrbitServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetReference", OrbitServiceServer.GetReference),
		unary("ListMonitors", OrbitServiceServer.ListMonitors),
		unary("Capture", OrbitServiceServer.Capture),
		unary("Zero", OrbitServiceServer.Zero),
		unary("Load", OrbitServiceServer.Load),
		unary("Save", OrbitServiceServer.Save),
		unary("Update", OrbitServiceServer.Update),
		unary("Propagate", OrbitServiceServer.Propagate),
		unary("ToggleDisplay", OrbitServiceServer.ToggleDisplay),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "goldenorbit/v1/orbit.proto",
}

// RegisterOrbitServiceServer registers srv on s.
func RegisterOrbitServiceServer(s grpc.ServiceRegistrar, srv OrbitServiceServer) {
	s.RegisterService(&OrbitServiceDesc, srv)
}

// fullMethod returns the wire name of an OrbitService method.
func fullMethod(method string) string {
	return "/" + OrbitServiceName + "/" + method
}

// unary builds the method descriptor dispatching to call.
func unary[Req any, Resp any](
	method string,
	call func(OrbitServiceServer, context.Context, *Req) (Resp, error),
) grpc.MethodDesc {
	name := fullMethod(method)

	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(
			srv any,
			ctx context.Context,
			dec func(any) error,
			interceptor grpc.UnaryServerInterceptor,
		) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			server, _ := srv.(OrbitServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: name,
			}

			handler := func(ctx context.Context, req any) (any, error) {
				typed, _ := req.(*Req)

				return call(server, ctx, typed)
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}

// OrbitServiceClient is the client API for OrbitService.
type OrbitServiceClient interface {
	GetReference(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListMonitors(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Capture(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Zero(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Load(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Save(
		ctx context.Context,
		in *wrapperspb.StringValue,
		opts ...grpc.CallOption,
	) (*wrapperspb.StringValue, error)
	Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Propagate(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ToggleDisplay(
		ctx context.Context,
		in *emptypb.Empty,
		opts ...grpc.CallOption,
	) (*wrapperspb.StringValue, error)
}

type orbitServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrbitServiceClient returns a client issuing calls over cc.
//
//nolint:ireturn // Mirrors the shape of generated gRPC clients.
func NewOrbitServiceClient(cc grpc.ClientConnInterface) OrbitServiceClient {
	return &orbitServiceClient{cc: cc}
}

// invoke issues one unary call and decodes the response into a new Resp.
func invoke[Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in any,
	opts []grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *orbitServiceClient) GetReference(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetReference", in, opts)
}

func (c *orbitServiceClient) ListMonitors(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "ListMonitors", in, opts)
}

func (c *orbitServiceClient) Capture(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "Capture", in, opts)
}

func (c *orbitServiceClient) Zero(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "Zero", in, opts)
}

func (c *orbitServiceClient) Load(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "Load", in, opts)
}

func (c *orbitServiceClient) Save(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "Save", in, opts)
}

func (c *orbitServiceClient) Update(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "Update", in, opts)
}

func (c *orbitServiceClient) Propagate(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, "Propagate", in, opts)
}

func (c *orbitServiceClient) ToggleDisplay(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "ToggleDisplay", in, opts)
}
