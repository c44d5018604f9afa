// Package pb defines the goldenorbit.v1.OrbitService gRPC API.
//
// Requests and responses are protobuf well-known types (Struct, ListValue,
// StringValue, Empty), so the service descriptor, client and server
// registration are maintained by hand instead of being generated.
// A reference table travels as a Struct mapping identifiers to two-element
// number lists, the same shape as the structured-text orbit file.
package pb
