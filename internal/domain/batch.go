package domain

// Batch is a byte buffer holding one or more serialized records, bounded by
// the configured size threshold. For CSV the buffer starts with the header
// line. A batch may exceed the threshold only when it carries a single
// oversized record, which is delivered whole rather than split or dropped.
type Batch struct {
	// Index is the position of the batch within one input file, starting at
	// zero. Indices are monotonic and gapless; they anchor the skip-batches
	// resume mechanism.
	Index uint64

	// Data is the serialized payload exactly as it will be compressed and
	// sent.
	Data []byte

	// Docs is the number of records in the batch (excluding the CSV header).
	Docs int
}

// Len returns the payload length in bytes.
func (b Batch) Len() int {
	return len(b.Data)
}
