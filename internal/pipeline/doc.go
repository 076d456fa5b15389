// Package pipeline orchestrates per-file processing and batch summary
// reporting.
//
// Runner.Run accepts a file or a directory. Each job is validated, probed,
// planned, and executed in turn; failures are counted rather than aborting
// the batch. Inspect probes files for the media info table.
package pipeline
