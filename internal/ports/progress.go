package ports

// ProgressSink receives progress increments and log lines from the pipeline.
// Implementations must be safe for concurrent use: every sender worker
// reports into the same sink.
type ProgressSink interface {
	// Start resets the sink for a new input. total is the estimated number
	// of batches, or zero when no estimate is available (stdin).
	Start(total int)

	// Add records n delivered (or skipped) batches.
	Add(n int)

	// Println emits a log line without corrupting any in-place rendering.
	Println(msg string)

	// Finish completes rendering for the current input.
	Finish()
}
