package client

import (
	"context"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/oshokin/golden-orbit/internal/config"
	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	"github.com/oshokin/golden-orbit/internal/logger"
	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
	"github.com/oshokin/golden-orbit/internal/repository/reference"
	"github.com/oshokin/golden-orbit/internal/service/common"
)

// Options configures how orbit-ctl reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Output receives the command results. Defaults to stdout.
	Output io.Writer
}

// Action is one orbit-ctl operation against a connected client.
type Action func(ctx context.Context, client *common.Client, out io.Writer) error

// Run loads the settings, connects to the server as the local actor and runs action.
func Run(ctx context.Context, opts *Options, action Action) error {
	ctx = logger.WithName(ctx, "orbit-ctl")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor := common.DetectActor()

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to orbit server", "server_address", serverAddress, "actor", actor.String())

	return action(ctx, client, output(opts.Output))
}

// GetReference prints the reference table.
func GetReference(ctx context.Context, client *common.Client, out io.Writer) error {
	table, err := client.GetReference(ctx)
	if err != nil {
		return err
	}

	return printTable(out, table)
}

// ListMonitors prints the monitors with their readings and references.
func ListMonitors(ctx context.Context, client *common.Client, out io.Writer) error {
	monitors, err := client.ListMonitors(ctx)
	if err != nil {
		return err
	}

	return printMessage(out, pb.MonitorsToStruct(monitors))
}

// Capture returns the action replacing the table from source.
func Capture(source string) Action {
	return func(ctx context.Context, client *common.Client, out io.Writer) error {
		table, err := client.Capture(ctx, source)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Reference captured", "source", source, "entries", len(table))

		return printTable(out, table)
	}
}

// Zero sets every reference to (0, 0).
func Zero(ctx context.Context, client *common.Client, out io.Writer) error {
	table, err := client.Zero(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "References zeroed", "entries", len(table))

	return printTable(out, table)
}

// Load returns the action replacing the table from an orbit file on the server.
func Load(path string) Action {
	return func(ctx context.Context, client *common.Client, out io.Writer) error {
		table, err := client.Load(ctx, path)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Orbit file loaded", "path", path, "entries", len(table))

		return printTable(out, table)
	}
}

// Save returns the action writing the table to an orbit file on the server.
func Save(path string) Action {
	return func(ctx context.Context, client *common.Client, out io.Writer) error {
		written, err := client.Save(ctx, path)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, written)

		return err
	}
}

// Update returns the action merging a local orbit file into the table.
// The monitors keep their references until Propagate runs.
func Update(path string) Action {
	return func(ctx context.Context, client *common.Client, out io.Writer) error {
		partial, err := reference.NewFileRepository("").Load(ctx, path)
		if err != nil {
			return err
		}

		table, err := client.Update(ctx, partial)
		if err != nil {
			return err
		}

		return printTable(out, table)
	}
}

// Propagate writes the table onto the monitors.
func Propagate(ctx context.Context, client *common.Client, _ io.Writer) error {
	if err := client.Propagate(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Reference table propagated")

	return nil
}

// Toggle flips the reference overlay and prints the new state.
func Toggle(ctx context.Context, client *common.Client, out io.Writer) error {
	state, err := client.ToggleDisplay(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, state)

	return err
}

// Convert writes the structured-text equivalent of a legacy matrix file
// without contacting the server.
func Convert(ctx context.Context, matPath, jsonPath string, out io.Writer) error {
	ctx = logger.WithName(ctx, "orbit-ctl")

	written, err := reference.Convert(ctx, reference.NewFileRepository(""), matPath, jsonPath)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(output(out), written)

	return err
}

func printTable(out io.Writer, table domain.Table) error {
	return printMessage(out, pb.TableToStruct(table))
}

func printMessage(out io.Writer, m proto.Message) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(m)
	if err != nil {
		return fmt.Errorf("format response: %w", err)
	}

	_, err = fmt.Fprintln(out, string(data))

	return err
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}
