// Package display provides the curve sinks the reference orbit overlay is drawn on.
//
// PlotDisplay keeps the curves in memory and renders them to an image file
// after every change. Nop discards everything and is used when no plot file
// is configured.
package display
