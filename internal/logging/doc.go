// Package logging configures slog for the toolkit. The console handler
// writes single-line key=value output for interactive runs; the json
// handler targets machine consumption.
package logging
