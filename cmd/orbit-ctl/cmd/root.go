package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/golden-orbit/internal/config"
	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
	"github.com/oshokin/golden-orbit/internal/service/client"
	"github.com/oshokin/golden-orbit/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the server address from the configuration.
	serverAddress string

	// rootCmd represents the base command of orbit-ctl.
	rootCmd = &cobra.Command{
		Use:   "orbit-ctl",
		Short: "Trigger reference orbit operations on orbit-server.",
		Long: `Sends reference orbit commands to orbit-server.

Captures replace the reference table from a live source, load replaces it from
an orbit file, update merges known entries without applying them to the
monitors and propagate applies the table. Results are printed as JSON.`,
		SilenceUsage: true,
	}
)

// remote wraps an action into a cobra handler connected to the server.
func remote(action client.Action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return client.Run(ctx, &client.Options{
			ConfigPath:    cfgPath,
			ServerAddress: serverAddress,
			Output:        cmd.OutOrStdout(),
		}, action)
	}
}

// Execute runs the orbit-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "get",
			Short: "Print the reference table.",
			Args:  cobra.NoArgs,
			RunE:  remote(client.GetReference),
		},
		{
			Use:   "monitors",
			Short: "Print the monitors with readings and references.",
			Args:  cobra.NoArgs,
			RunE:  remote(client.ListMonitors),
		},
		{
			Use:       "capture {reference|gold|current}",
			Short:     "Replace the table from a live source and apply it.",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{pb.SourceReference, pb.SourceGold, pb.SourceCurrent},
			RunE: func(cmd *cobra.Command, args []string) error {
				return remote(client.Capture(args[0]))(cmd, args)
			},
		},
		{
			Use:   "zero",
			Short: "Set every reference to zero.",
			Args:  cobra.NoArgs,
			RunE:  remote(client.Zero),
		},
		{
			Use:   "load <path>",
			Short: "Replace the table from a .json or .mat file on the server and apply it.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return remote(client.Load(args[0]))(cmd, args)
			},
		},
		{
			Use:   "save <path>",
			Short: "Write the table to a .json file on the server.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return remote(client.Save(args[0]))(cmd, args)
			},
		},
		{
			Use:   "update <file>",
			Short: "Merge known entries from a local orbit file without applying them.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return remote(client.Update(args[0]))(cmd, args)
			},
		},
		{
			Use:   "propagate",
			Short: "Apply the table to the monitors.",
			Args:  cobra.NoArgs,
			RunE:  remote(client.Propagate),
		},
		{
			Use:   "toggle",
			Short: "Show or hide the reference overlay.",
			Args:  cobra.NoArgs,
			RunE:  remote(client.Toggle),
		},
		{
			Use:   "convert <mat-file> <json-file>",
			Short: "Convert a legacy .mat orbit into a .json orbit locally.",
			Args:  cobra.ExactArgs(2), //nolint:mnd // Source and destination.
			RunE: func(cmd *cobra.Command, args []string) error {
				return client.Convert(cmd.Context(), args[0], args[1], cmd.OutOrStdout())
			},
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename,
		"path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "",
		"orbit-server address (overrides config)")

	rootCmd.AddCommand(newCommands()...)
}
