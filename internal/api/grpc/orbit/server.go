package orbit

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
	"github.com/oshokin/golden-orbit/internal/provider"
	"github.com/oshokin/golden-orbit/internal/repository/reference"
	orbitsvc "github.com/oshokin/golden-orbit/internal/service/orbit"
)

// Service abstracts the manager operations the transport layer depends on.
type Service interface {
	Reference() domain.Table
	Monitors() []*domain.Monitor
	Capture(ctx context.Context, source orbitsvc.Source) (domain.Table, error)
	Zero(ctx context.Context) domain.Table
	LoadFile(ctx context.Context, path string) (domain.Table, error)
	SaveFile(ctx context.Context, path string) (string, error)
	Update(ctx context.Context, partial domain.Table) orbitsvc.UpdateResult
	Propagate(ctx context.Context) orbitsvc.Propagation
	ToggleDisplay(ctx context.Context) orbitsvc.DisplayState
}

// Server implements the OrbitService gRPC API.
type Server struct {
	pb.UnimplementedOrbitServiceServer

	// service provides the reference orbit operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetReference returns the reference table.
func (s *Server) GetReference(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return pb.TableToStruct(s.service.Reference()), nil
}

// ListMonitors returns the monitors with their readings and references.
func (s *Server) ListMonitors(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return pb.MonitorsToStruct(s.service.Monitors()), nil
}

// Capture replaces the table from the live source named in the request.
func (s *Server) Capture(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	source := req.GetValue()

	switch source {
	case pb.SourceReference, pb.SourceGold, pb.SourceCurrent:
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown capture source %q", source)
	}

	table, err := s.service.Capture(ctx, orbitsvc.Source(source))
	if err != nil {
		return nil, toStatus(err)
	}

	return pb.TableToStruct(table), nil
}

// Zero sets every reference to (0, 0).
func (s *Server) Zero(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return pb.TableToStruct(s.service.Zero(ctx)), nil
}

// Load replaces the table from an orbit file on the server.
func (s *Server) Load(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}

	table, err := s.service.LoadFile(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return pb.TableToStruct(table), nil
}

// Save writes the table to an orbit file on the server.
func (s *Server) Save(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}

	written, err := s.service.SaveFile(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.String(written), nil
}

// Update merges the entries of the request whose identifiers are already in
// the table and returns the resulting table. Monitors are not updated.
func (s *Server) Update(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	partial, err := pb.TableFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result := s.service.Update(ctx, partial)

	return pb.TableToStruct(result.Table), nil
}

// Propagate writes the table onto the monitors.
func (s *Server) Propagate(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.Propagate(ctx)

	return new(emptypb.Empty), nil
}

// ToggleDisplay flips the reference overlay and returns the new state.
func (s *Server) ToggleDisplay(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	state := s.service.ToggleDisplay(ctx)
	if state == orbitsvc.Shown {
		return wrapperspb.String(pb.DisplayShown), nil
	}

	return wrapperspb.String(pb.DisplayHidden), nil
}

// toStatus maps manager errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, reference.ErrPathOutsideDir):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, reference.ErrFileFormat):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, provider.ErrSourceUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, orbitsvc.ErrUnknownSource):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
