package chunk

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/docship/docship/internal/domain"
)

// CsvChunker batches CSV rows. The header row is read at construction and
// repeated at the start of every payload so each batch is a complete CSV
// document on its own.
type CsvChunker struct {
	reader     *csv.Reader
	enc        *csv.Writer
	scratch    bytes.Buffer
	headerLine []byte
	buf        bytes.Buffer
	rows       int
	record     uint64
	threshold  int
	done       bool
	err        error
}

type csvOptions struct {
	delimiter rune
	flexible  bool
}

// CsvOption configures a CsvChunker.
type CsvOption func(*csvOptions)

// WithDelimiter sets the field delimiter. Default is ','.
func WithDelimiter(r rune) CsvOption {
	return func(o *csvOptions) {
		if r != 0 {
			o.delimiter = r
		}
	}
}

// WithFlexibleFields disables the per-row field count check, accepting
// ragged rows instead of failing on them.
func WithFlexibleFields() CsvOption {
	return func(o *csvOptions) { o.flexible = true }
}

// NewCsvChunker creates a chunker reading CSV rows from r. The header row is
// consumed immediately; an input without a single row yields no batches.
func NewCsvChunker(r io.Reader, threshold int, opts ...CsvOption) (*CsvChunker, error) {
	o := csvOptions{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(r)
	reader.Comma = o.delimiter
	if o.flexible {
		reader.FieldsPerRecord = -1
	}

	c := &CsvChunker{
		reader:    reader,
		threshold: threshold,
	}
	c.enc = csv.NewWriter(&c.scratch)
	c.enc.Comma = o.delimiter

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			c.done = true
			return c, nil
		}
		return nil, &domain.ParseError{Format: domain.FormatCSV, Record: 0, Err: err}
	}

	line, err := c.encodeRow(header)
	if err != nil {
		return nil, &domain.ParseError{Format: domain.FormatCSV, Record: 0, Err: err}
	}
	c.headerLine = line
	c.buf.Write(c.headerLine)
	return c, nil
}

// Next returns the next payload. A payload always starts with the header
// line and holds at least one data row. Returns io.EOF once the input is
// exhausted.
func (c *CsvChunker) Next() ([]byte, int, error) {
	if c.err != nil {
		return nil, 0, c.err
	}

	for !c.done {
		fields, err := c.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.done = true
				break
			}
			c.fail(&domain.ParseError{Format: domain.FormatCSV, Record: c.record + 1, Err: err})
			return nil, 0, c.err
		}
		c.record++

		line, err := c.encodeRow(fields)
		if err != nil {
			c.fail(&domain.ParseError{Format: domain.FormatCSV, Record: c.record, Err: err})
			return nil, 0, c.err
		}

		// Close the batch before appending a row that would push it at
		// or over the threshold. An oversized row lands in an otherwise
		// empty buffer and ships whole.
		if c.buf.Len()+len(line) >= c.threshold && c.rows > 0 {
			payload, docs := c.flush()
			c.buf.Write(c.headerLine)
			c.buf.Write(line)
			c.rows = 1
			return payload, docs, nil
		}

		c.buf.Write(line)
		c.rows++
	}

	// Skip a trailing header-only buffer.
	if c.rows > 0 {
		payload, docs := c.flush()
		return payload, docs, nil
	}
	return nil, 0, io.EOF
}

func (c *CsvChunker) encodeRow(fields []string) ([]byte, error) {
	c.scratch.Reset()
	if err := c.enc.Write(fields); err != nil {
		return nil, err
	}
	c.enc.Flush()
	if err := c.enc.Error(); err != nil {
		return nil, err
	}
	line := make([]byte, c.scratch.Len())
	copy(line, c.scratch.Bytes())
	return line, nil
}

func (c *CsvChunker) flush() ([]byte, int) {
	payload := make([]byte, c.buf.Len())
	copy(payload, c.buf.Bytes())
	docs := c.rows
	c.buf.Reset()
	c.rows = 0
	return payload, docs
}

// fail records a terminal error and discards the partial buffer so it is
// never re-delivered.
func (c *CsvChunker) fail(err error) {
	c.err = err
	c.buf.Reset()
	c.rows = 0
}
