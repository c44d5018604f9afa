package orbit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/golden-orbit/internal/beamline"
	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
	"github.com/oshokin/golden-orbit/internal/provider"
	"github.com/oshokin/golden-orbit/internal/repository/reference"
	orbitsvc "github.com/oshokin/golden-orbit/internal/service/orbit"
)

const bufSize = 1 << 20

// startServer serves a manager over an in-memory listener and returns a client.
func startServer(t *testing.T, manager *orbitsvc.Manager) pb.OrbitServiceClient {
	t.Helper()

	listener := bufconn.Listen(bufSize)

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor()))
	pb.RegisterOrbitServiceServer(server, NewServer(manager))

	go func() {
		_ = server.Serve(listener)
	}()

	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return pb.NewOrbitServiceClient(conn)
}

func newManager(t *testing.T, live provider.Provider) (*orbitsvc.Manager, []*domain.Monitor, string) {
	t.Helper()

	dir := t.TempDir()
	monitors := []*domain.Monitor{
		{ID: "BPM1", S: 1, Enabled: true},
		{ID: "BPM2", S: 2, Enabled: true},
	}

	manager := orbitsvc.NewManager(beamline.NewCollection(monitors), orbitsvc.Options{
		Provider:   live,
		Repository: reference.NewFileRepository(dir, reference.Confined()),
	})

	return manager, monitors, dir
}

// TestServer_CaptureSaveLoad drives the main operations over the wire.
func TestServer_CaptureSaveLoad(t *testing.T) {
	t.Parallel()

	ctx := pb.AppendActor(context.Background(), &pb.SystemActor{Hostname: "ctl", Username: "operator"})
	live := &provider.Static{
		Reference: []domain.Reading{
			{Validity: domain.Valid, XMM: 1, YMM: -2, ID: "BPM1"},
			{Validity: domain.Invalid, XMM: 5, YMM: 5, ID: "BPM2"},
		},
	}

	manager, monitors, dir := newManager(t, live)
	client := startServer(t, manager)

	captured, err := client.Capture(ctx, wrapperspb.String(pb.SourceReference))
	require.NoError(t, err)

	table, err := pb.TableFromStruct(captured)
	require.NoError(t, err)
	require.Equal(t, domain.Table{"BPM1": {X: 0.001, Y: -0.002}}, table)
	require.Equal(t, domain.Coordinates{X: 0.001, Y: -0.002}, monitors[0].Reference())

	written, err := client.Save(ctx, wrapperspb.String("run"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "run.json"), written.GetValue())

	zeroed, err := client.Zero(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Len(t, zeroed.GetFields(), 2)

	loaded, err := client.Load(ctx, wrapperspb.String("run.json"))
	require.NoError(t, err)

	table, err = pb.TableFromStruct(loaded)
	require.NoError(t, err)
	require.Equal(t, domain.Table{"BPM1": {X: 0.001, Y: -0.002}}, table)

	current, err := client.GetReference(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, loaded.AsMap(), current.AsMap())

	listed, err := client.ListMonitors(ctx, new(emptypb.Empty))
	require.NoError(t, err)

	remote := pb.MonitorsFromStruct(listed)
	require.Len(t, remote, 2)
	require.Equal(t, "BPM1", remote[0].ID)
	require.InDelta(t, 0.001, remote[0].XRef, 0)
}

// TestServer_UpdateThenPropagate merges without touching monitors until asked.
func TestServer_UpdateThenPropagate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, monitors, _ := newManager(t, nil)
	client := startServer(t, manager)

	_, err := client.Zero(ctx, new(emptypb.Empty))
	require.NoError(t, err)

	merged, err := client.Update(ctx, pb.TableToStruct(domain.Table{
		"BPM1":  {X: 0.5, Y: 0.25},
		"GHOST": {X: 1, Y: 1},
	}))
	require.NoError(t, err)

	table, err := pb.TableFromStruct(merged)
	require.NoError(t, err)
	require.Equal(t, domain.Table{"BPM1": {X: 0.5, Y: 0.25}, "BPM2": domain.Zero}, table)
	require.Equal(t, domain.Zero, monitors[0].Reference())

	_, err = client.Propagate(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, domain.Coordinates{X: 0.5, Y: 0.25}, manager.Monitors()[0].Reference())
}

// TestServer_ToggleDisplay flips between shown and hidden.
func TestServer_ToggleDisplay(t *testing.T) {
	t.Parallel()

	manager, _, _ := newManager(t, nil)
	client := startServer(t, manager)

	state, err := client.ToggleDisplay(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, pb.DisplayShown, state.GetValue())

	state, err = client.ToggleDisplay(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, pb.DisplayHidden, state.GetValue())
}

// TestServer_ErrorCodes maps manager failures to status codes.
func TestServer_ErrorCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, _, _ := newManager(t, nil)
	client := startServer(t, manager)

	_, err := client.Capture(ctx, wrapperspb.String(pb.SourceGold))
	require.Equal(t, codes.Unavailable, status.Code(err))

	_, err = client.Capture(ctx, wrapperspb.String("elsewhere"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Load(ctx, wrapperspb.String("missing.json"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Load(ctx, wrapperspb.String("orbit.csv"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Load(ctx, wrapperspb.String(""))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Save(ctx, wrapperspb.String(""))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{"BPM1": "not a pair"})
	require.NoError(t, err)

	_, err = client.Update(ctx, bad)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Update(ctx, pb.TableToStruct(domain.Table{"BPM1": {X: math.NaN(), Y: 0}}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_PathsStayInOrbitDir refuses to read or write outside the orbit directory.
func TestServer_PathsStayInOrbitDir(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, _, dir := newManager(t, nil)
	client := startServer(t, manager)

	outside := filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"-outside.json")

	for _, path := range []string{outside, "../escape.json", "/etc/passwd.json"} {
		_, err := client.Load(ctx, wrapperspb.String(path))
		require.Equal(t, codes.PermissionDenied, status.Code(err), path)

		_, err = client.Save(ctx, wrapperspb.String(path))
		require.Equal(t, codes.PermissionDenied, status.Code(err), path)
	}

	_, err := os.Stat(outside)
	require.ErrorIs(t, err, os.ErrNotExist)

	written, err := client.Save(ctx, wrapperspb.String("inside"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "inside.json"), written.GetValue())
}

// TestToStatus covers the fallback codes.
func TestToStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("wrap: %w", reference.ErrFileFormat), codes.InvalidArgument},
		{fmt.Errorf("%w: %w", reference.ErrFileFormat, reference.ErrPathOutsideDir), codes.PermissionDenied},
		{fmt.Errorf("wrap: %w", provider.ErrSourceUnavailable), codes.Unavailable},
		{fmt.Errorf("wrap: %w", orbitsvc.ErrUnknownSource), codes.InvalidArgument},
		{fmt.Errorf("wrap: %w", context.Canceled), codes.Canceled},
		{fmt.Errorf("wrap: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{errors.New("disk on fire"), codes.Internal},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, status.Code(toStatus(tc.err)), tc.err.Error())
	}
}
