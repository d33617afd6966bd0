package chunk

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/docship/docship/internal/domain"
)

// Transform rewrites a decoded record before it is measured and serialized.
// Returning the map unchanged is valid; returning nil drops all fields.
type Transform func(map[string]any) map[string]any

// DropFields returns a Transform that removes the named top-level fields
// from every record, e.g. to strip precomputed embeddings before upload.
func DropFields(names ...string) Transform {
	return func(obj map[string]any) map[string]any {
		for _, name := range names {
			delete(obj, name)
		}
		return obj
	}
}

// NdJsonChunker batches newline-delimited JSON objects. Records are decoded
// one at a time, optionally transformed, and re-serialized one object per
// line.
type NdJsonChunker struct {
	dec       *json.Decoder
	transform Transform
	buf       bytes.Buffer
	docs      int
	record    uint64
	threshold int
	done      bool
	err       error
}

// NewNdJsonChunker creates a chunker decoding JSON objects from r.
// transform may be nil.
func NewNdJsonChunker(r io.Reader, threshold int, transform Transform) *NdJsonChunker {
	return &NdJsonChunker{
		dec:       json.NewDecoder(bufio.NewReader(r)),
		transform: transform,
		threshold: threshold,
	}
}

// Next returns the next payload and the number of objects it holds.
// Returns io.EOF once the input is exhausted.
func (c *NdJsonChunker) Next() ([]byte, int, error) {
	if c.err != nil {
		return nil, 0, c.err
	}

	for !c.done {
		var obj map[string]any
		if err := c.dec.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				c.done = true
				break
			}
			c.fail(&domain.ParseError{Format: domain.FormatNDJSON, Record: c.record + 1, Err: err})
			return nil, 0, c.err
		}
		c.record++

		if c.transform != nil {
			obj = c.transform(obj)
		}

		// Measure the serialized size through a length-only sink before
		// deciding whether the object still fits.
		var counter CountingWriter
		if err := newEncoder(&counter).Encode(obj); err != nil {
			c.fail(&domain.ParseError{Format: domain.FormatNDJSON, Record: c.record, Err: err})
			return nil, 0, c.err
		}

		if c.buf.Len()+counter.Count() >= c.threshold && c.docs > 0 {
			payload, docs := c.flush()
			if err := c.encode(obj); err != nil {
				return nil, 0, c.err
			}
			c.docs = 1
			return payload, docs, nil
		}

		if err := c.encode(obj); err != nil {
			return nil, 0, c.err
		}
		c.docs++
	}

	if c.docs > 0 {
		payload, docs := c.flush()
		return payload, docs, nil
	}
	return nil, 0, io.EOF
}

// newEncoder returns a JSON encoder that leaves document content as-is
// instead of HTML-escaping it. Measurement and serialization must agree, so
// both go through here.
func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// encode appends obj to the buffer, one object per line. The Encoder's
// trailing newline is the NDJSON record separator.
func (c *NdJsonChunker) encode(obj map[string]any) error {
	if err := newEncoder(&c.buf).Encode(obj); err != nil {
		c.fail(&domain.ParseError{Format: domain.FormatNDJSON, Record: c.record, Err: err})
		return c.err
	}
	return nil
}

func (c *NdJsonChunker) flush() ([]byte, int) {
	payload := make([]byte, c.buf.Len())
	copy(payload, c.buf.Bytes())
	docs := c.docs
	c.buf.Reset()
	c.docs = 0
	return payload, docs
}

func (c *NdJsonChunker) fail(err error) {
	c.err = err
	c.buf.Reset()
	c.docs = 0
}
