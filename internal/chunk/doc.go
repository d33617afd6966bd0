// Package chunk converts record streams into byte-bounded batch payloads.
//
// Each chunker reads one logical record at a time (a CSV row or a JSON
// object), accumulates serialized records into a buffer, and closes the
// buffer before appending a record that would push it at or over the
// configured threshold. A record is never split across two payloads and a
// single record larger than the threshold still yields one oversized
// payload carrying it whole.
package chunk
