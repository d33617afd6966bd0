// Package pipeline wires chunkers, the bounded batch channel, and the sender
// worker pool into one delivery run per input file.
//
// One producer goroutine runs the chunker and pushes batches into a
// fixed-capacity channel (backpressure bounds memory independent of file
// size). A pool of N workers pulls batches and delivers them with
// skip-aware retry and exponential backoff. The first fatal error cancels
// the run; already-started sends finish before the error is returned.
package pipeline
