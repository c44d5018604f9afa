// Package observability exposes Prometheus metrics of the orbit server: RPC
// counts and latencies plus the state of the reference table.
package observability
