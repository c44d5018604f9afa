// Package common holds helpers shared by orbit-ctl and the integration tests.
//
// It provides a gRPC client wrapper for the orbit service with call timeouts
// and caller identification, plus detection of the local user and host.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
