//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/golden-orbit/internal/config"
	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
)

// Client wraps the gRPC OrbitService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection, nil when the client wraps a foreign connection.
	conn *grpc.ClientConn
	// api is the OrbitService client interface.
	api pb.OrbitServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is attached to every call as metadata.
	actor *pb.SystemActor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor identifies the caller on every request.
func WithActor(actor *pb.SystemActor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the orbit server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial orbit server: %w", err)
	}

	client := NewClient(conn, opts...)
	client.conn = conn

	return client, nil
}

// NewClient wraps an existing connection. Close does not close cc.
func NewClient(cc grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		api:         pb.NewOrbitServiceClient(cc),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetReference returns the reference table.
func (c *Client) GetReference(ctx context.Context) (domain.Table, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetReference(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get reference: %w", err)
	}

	return tableFromResponse(resp)
}

// ListMonitors returns the monitors sorted by position.
func (c *Client) ListMonitors(ctx context.Context) ([]*domain.Monitor, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListMonitors(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}

	return pb.MonitorsFromStruct(resp), nil
}

// Capture replaces the table from a live source and returns the new table.
func (c *Client) Capture(ctx context.Context, source string) (domain.Table, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Capture(callCtx, wrapperspb.String(source))
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", source, err)
	}

	return tableFromResponse(resp)
}

// Zero sets every reference to (0, 0) and returns the new table.
func (c *Client) Zero(ctx context.Context) (domain.Table, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Zero(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("zero: %w", err)
	}

	return tableFromResponse(resp)
}

// Load replaces the table from an orbit file on the server.
func (c *Client) Load(ctx context.Context, path string) (domain.Table, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Load(callCtx, wrapperspb.String(path))
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}

	return tableFromResponse(resp)
}

// Save writes the table to an orbit file on the server and returns the path written.
func (c *Client) Save(ctx context.Context, path string) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Save(callCtx, wrapperspb.String(path))
	if err != nil {
		return "", fmt.Errorf("save %q: %w", path, err)
	}

	return resp.GetValue(), nil
}

// Update merges partial into the table and returns the resulting table.
func (c *Client) Update(ctx context.Context, partial domain.Table) (domain.Table, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Update(callCtx, pb.TableToStruct(partial))
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}

	return tableFromResponse(resp)
}

// Propagate writes the table onto the monitors.
func (c *Client) Propagate(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.Propagate(callCtx, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("propagate: %w", err)
	}

	return nil
}

// ToggleDisplay flips the reference overlay and returns the new state.
func (c *Client) ToggleDisplay(ctx context.Context) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ToggleDisplay(callCtx, new(emptypb.Empty))
	if err != nil {
		return "", fmt.Errorf("toggle display: %w", err)
	}

	return resp.GetValue(), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, when
// known, travels as metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = pb.AppendActor(ctx, c.actor)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func tableFromResponse(resp *structpb.Struct) (domain.Table, error) {
	table, err := pb.TableFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("decode reference table: %w", err)
	}

	return table, nil
}
