package ports

import "io"

// Chunker converts one input stream into a lazy, finite, non-restartable
// sequence of batch payloads. Implementations accumulate whole records into
// a byte buffer bounded by the configured threshold and never split a record
// across two payloads.
type Chunker interface {
	// Next returns the next payload and the number of records it holds.
	// Returns io.EOF once the input is exhausted. Any other error is fatal
	// and terminates the sequence; whatever was buffered at that point is
	// discarded, never re-delivered.
	Next() (payload []byte, docs int, err error)
}

// ErrNoMoreBatches indicates that the chunker has consumed its whole input.
var ErrNoMoreBatches = io.EOF
