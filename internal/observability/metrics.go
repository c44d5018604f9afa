package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const unknownLabel = "unknown"

// Collector bundles the Prometheus metrics of the orbit server and provides
// helpers to wire them into gRPC servers and HTTP handlers.
type Collector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec

	// TableReplacements counts successful wholesale replacements by source.
	TableReplacements *prometheus.CounterVec
	// TableFailures counts operations that left the table untouched by source.
	TableFailures *prometheus.CounterVec
	// TableEntries is the size of the reference table.
	TableEntries prometheus.Gauge
	// UnknownMonitors counts identifiers present on only one side of a
	// propagation, labeled by the side that had them.
	UnknownMonitors *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbit_rpc_requests_total",
		Help: "Total number of handled orbit RPCs, labeled by service, method, and gRPC status code.",
	}, []string{"service", "method", "code"}), "orbit_rpc_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orbit_rpc_request_duration_seconds",
		Help:    "Orbit RPC latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"service", "method"}), "orbit_rpc_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	replacements, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbit_table_replacements_total",
		Help: "Reference table replacements, labeled by source.",
	}, []string{"source"}), "orbit_table_replacements_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbit_table_failures_total",
		Help: "Failed reference table operations, labeled by source.",
	}, []string{"source"}), "orbit_table_failures_total")
	if err != nil {
		return nil, err
	}

	entries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orbit_table_entries",
		Help: "Current number of entries in the reference table.",
	}), "orbit_table_entries")
	if err != nil {
		return nil, err
	}

	unknown, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbit_unknown_monitors_total",
		Help: "Identifiers found on one side of a propagation only, labeled by that side.",
	}, []string{"side"}), "orbit_unknown_monitors_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		RPCRequests:       requests,
		RPCDurations:      durations,
		TableReplacements: replacements,
		TableFailures:     failures,
		TableEntries:      entries,
		UnknownMonitors:   unknown,
	}, nil
}

// UnaryServerInterceptor records request counts and durations for unary RPCs.
func (c *Collector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		if c == nil {
			return resp, err
		}

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}

		service, method := SplitMethod(fullMethod)

		if c.RPCRequests != nil {
			c.RPCRequests.WithLabelValues(service, method, status.Code(err).String()).Inc()
		}

		if c.RPCDurations != nil {
			c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		}

		return resp, err
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// TableReplaced records a successful replacement from source.
func (c *Collector) TableReplaced(source string, entries int) {
	if c == nil {
		return
	}

	if c.TableReplacements != nil {
		c.TableReplacements.WithLabelValues(source).Inc()
	}

	c.TableResized(entries)
}

// TableResized sets the table size gauge.
func (c *Collector) TableResized(entries int) {
	if c == nil || c.TableEntries == nil {
		return
	}

	c.TableEntries.Set(float64(entries))
}

// TableFailed records an operation from source that left the table untouched.
func (c *Collector) TableFailed(source string) {
	if c == nil || c.TableFailures == nil {
		return
	}

	c.TableFailures.WithLabelValues(source).Inc()
}

// MonitorsUnknown records n identifiers only found on side.
func (c *Collector) MonitorsUnknown(side string, n int) {
	if c == nil || c.UnknownMonitors == nil || n <= 0 {
		return
	}

	c.UnknownMonitors.WithLabelValues(side).Add(float64(n))
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components, returning "unknown" for the parts it cannot find.
func SplitMethod(fullMethod string) (string, string) {
	parts := strings.Split(strings.TrimPrefix(fullMethod, "/"), "/")
	if len(parts) < 2 { //nolint:mnd // service and method.
		return unknownLabel, unknownLabel
	}

	service := parts[len(parts)-2]
	method := parts[len(parts)-1]

	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}

	if service == "" {
		service = unknownLabel
	}

	if method == "" {
		method = unknownLabel
	}

	return service, method
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	existing, err := register(reg, vec, name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return vec, nil
	}

	found, ok := existing.(*prometheus.CounterVec)
	if !ok {
		return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
	}

	return found, nil
}

func registerHistogramVec(
	reg prometheus.Registerer,
	vec *prometheus.HistogramVec,
	name string,
) (*prometheus.HistogramVec, error) {
	existing, err := register(reg, vec, name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return vec, nil
	}

	found, ok := existing.(*prometheus.HistogramVec)
	if !ok {
		return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
	}

	return found, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	existing, err := register(reg, gauge, name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return gauge, nil
	}

	found, ok := existing.(prometheus.Gauge)
	if !ok {
		return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
	}

	return found, nil
}

// register returns the collector already registered under the same
// descriptor, or nil when c was registered now.
func register(reg prometheus.Registerer, c prometheus.Collector, name string) (prometheus.Collector, error) {
	err := reg.Register(c)
	if err == nil {
		return nil, nil //nolint:nilnil // Nil collector means c itself was registered.
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector, nil
	}

	return nil, fmt.Errorf("register %s: %w", name, err)
}
