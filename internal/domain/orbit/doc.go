// Package orbit contains core domain types for the reference orbit.
//
// It defines Coordinates and Table (the canonical mapping from monitor
// identifier to reference coordinates in meters), Monitor (one beam-position
// sensor) and Reading (a raw live record in millimeters), together with the
// normalization rules that turn raw records into table entries.
package orbit
