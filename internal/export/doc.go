// Package export serializes trajectories, sweep reports and scans to CSV,
// JSON and SVG. All exporters take an io.Writer; [WriteFile] routes one to
// a file path.
package export
