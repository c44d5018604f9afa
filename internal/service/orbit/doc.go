// Package orbit implements the reference orbit manager.
//
// The manager owns the reference table (monitor identifier to coordinates in
// meters), fills it from the live provider, from the current monitor readings
// or from orbit files, and propagates it onto the reference fields of the
// monitor collection. It also drives the reference overlay of the display.
// The manager writes monitor references only. Current readings are kept
// fresh by whoever owns the collection.
//
// Every table-mutating operation and every propagation runs under one lock.
// Provider and file I/O happen before the lock is taken, so a failed read
// leaves both the table and the monitors exactly as they were.
package orbit
