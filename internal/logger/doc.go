// Package logger wraps zap with a global sugared console logger and context
// helpers.
//
// Orbit operations take a context and log through the logger stored in it, so
// the component name and the caller identity travel with every line.
package logger
