package chunk

// CountingWriter is a length-only sink. It lets a record be measured by
// serializing it without allocating the serialized bytes.
type CountingWriter struct {
	n int
}

// Write discards p and accumulates its length.
func (w *CountingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

// Count returns the number of bytes written so far.
func (w *CountingWriter) Count() int {
	return w.n
}
