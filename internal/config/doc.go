// Package config defines the settings shared by orbit-server and orbit-ctl and
// provides helpers to load, validate and save them in YAML format.
//
// Relative orbit file paths handed to the server are resolved against
// OrbitDir, the default directory for saved reference orbits.
package config
