package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/golden-orbit/internal/config"
	"github.com/oshokin/golden-orbit/internal/service/server"
	"github.com/oshokin/golden-orbit/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// beamlineFile overrides the monitor list from the configuration.
	beamlineFile string
	// readingsFile overrides the live readings snapshot from the configuration.
	readingsFile string

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "orbit-server [listen-address]",
		Short: "Run the reference orbit gRPC server.",
		Long: `Starts the gRPC server owning the reference orbit of one beamline.

The server loads the monitor list, keeps the reference table in memory and
applies it to the monitors on every capture, zero or load request.
Only the port from ServerAddress config is used for listening (e.g., :8080).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:8080).
Live readings are replayed from the readings file when one is configured.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				BeamlineFile:  beamlineFile,
				ReadingsFile:  readingsFile,
			})
		},
	}
)

// Execute runs the orbit-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&beamlineFile, "beamline", "b", "", "path to the monitor list (overrides config)")
	rootCmd.Flags().StringVarP(&readingsFile, "readings", "r", "", "path to the live readings snapshot (overrides config)")
}
