// Package version carries the build metadata of orbit-server and orbit-ctl.
//
// Version, Commit and BuildTime are set through -ldflags "-X ..." at build time.
package version
