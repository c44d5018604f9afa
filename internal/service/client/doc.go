// Package client implements the orbit-ctl actions.
//
// Each action connects to orbit-server as the local user, triggers one
// reference orbit operation and prints the result as JSON. Convert works on
// local files only.
package client
