package server

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"

	api "github.com/oshokin/golden-orbit/internal/api/grpc/orbit"
	"github.com/oshokin/golden-orbit/internal/beamline"
	"github.com/oshokin/golden-orbit/internal/config"
	"github.com/oshokin/golden-orbit/internal/display"
	"github.com/oshokin/golden-orbit/internal/logger"
	"github.com/oshokin/golden-orbit/internal/observability"
	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
	"github.com/oshokin/golden-orbit/internal/provider"
	"github.com/oshokin/golden-orbit/internal/repository/reference"
	orbitsvc "github.com/oshokin/golden-orbit/internal/service/orbit"
)

// application holds everything orbit-server serves.
type application struct {
	// beamline is the controlled beamline description.
	beamline *beamline.Beamline
	// collection owns the monitors at run time.
	collection *beamline.Collection
	// poller refreshes the current readings. Nil without a readings source.
	poller *readingsPoller
	// manager owns the reference table.
	manager *orbitsvc.Manager
	// collector exposes the metrics of the process.
	collector *observability.Collector
	// grpcServer serves OrbitService.
	grpcServer *grpc.Server
}

// newApplication loads the beamline and wires the manager with its collaborators.
func newApplication(ctx context.Context, settings *config.Config, reg *prometheus.Registry) (*application, error) {
	line, err := beamline.Load(settings.BeamlineFile)
	if err != nil {
		return nil, fmt.Errorf("load beamline: %w", err)
	}

	collector, err := observability.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	if err = reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	repo := reference.NewFileRepository(settings.OrbitDir,
		reference.Confined(),
		reference.WithDisplayDir(settings.OrbitDisplayDir),
	)

	opts := orbitsvc.Options{
		Repository: repo,
		Display:    display.Nop{},
		Recorder:   collector,
		Offset:     line.Offset,
	}

	if settings.ReadingsFile != "" {
		opts.Provider = provider.NewReplay(settings.ReadingsFile)
	}

	if settings.PlotFile != "" {
		opts.Display = display.NewPlotDisplay(settings.PlotFile, line.Name)
	}

	collection := beamline.NewCollection(line.Monitors)
	manager := orbitsvc.NewManager(collection, opts)

	var poller *readingsPoller

	if opts.Provider != nil {
		poller = newReadingsPoller(opts.Provider, collection, settings.ReadingsInterval)
		poller.poll(ctx)
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		collector.UnaryServerInterceptor(),
		api.LoggingInterceptor(),
	))
	pb.RegisterOrbitServiceServer(grpcServer, api.NewServer(manager))

	logger.InfoKV(ctx, "Beamline loaded",
		"beamline", line.Name,
		"monitors", len(line.Monitors),
		"offset", line.Offset,
		"readings_file", settings.ReadingsFile,
		"orbit_dir", settings.OrbitDir,
		"orbit_display_dir", settings.OrbitDisplayDir,
		"readings_interval", settings.ReadingsInterval,
		"plot_file", settings.PlotFile,
	)

	return &application{
		beamline:   line,
		collection: collection,
		poller:     poller,
		manager:    manager,
		collector:  collector,
		grpcServer: grpcServer,
	}, nil
}

// watchReadings keeps the current readings fresh until ctx is canceled.
func (a *application) watchReadings(ctx context.Context) {
	if a.poller == nil {
		return
	}

	go a.poller.run(ctx)
}
