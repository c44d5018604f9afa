// Package orbit implements the gRPC transport for the reference orbit manager.
//
// It converts tables and monitors to protobuf well-known types, maps manager
// errors to gRPC status codes and attaches the calling actor to the request
// logger.
package orbit
