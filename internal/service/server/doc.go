// Package server runs orbit-server: it loads the settings and the beamline,
// builds the reference orbit manager and serves it over gRPC, optionally
// with a Prometheus metrics endpoint.
package server
