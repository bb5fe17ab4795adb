// Package export renders tracked data to CSV and JSON files.
//
// Renderers take already-loaded slices so callers decide what an export
// includes; this package only handles formatting and file placement.
package export
