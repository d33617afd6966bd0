package chunk

import (
	"fmt"
	"io"

	"github.com/docship/docship/internal/domain"
	"github.com/docship/docship/internal/ports"
)

// Config carries the chunking parameters shared by all formats.
type Config struct {
	// Threshold is the batch size bound in bytes.
	Threshold int

	// Delimiter is the CSV field delimiter; zero means ','.
	Delimiter rune

	// FlexibleFields accepts CSV rows whose field count differs from the
	// header.
	FlexibleFields bool

	// Transform is applied to every NDJSON record before measurement.
	Transform Transform
}

// New builds the chunker for the given format. FormatJSON is not chunked;
// whole-document delivery is handled by the pipeline directly.
func New(format domain.Format, r io.Reader, cfg Config) (ports.Chunker, error) {
	switch format {
	case domain.FormatCSV:
		opts := []CsvOption{WithDelimiter(cfg.Delimiter)}
		if cfg.FlexibleFields {
			opts = append(opts, WithFlexibleFields())
		}
		return NewCsvChunker(r, cfg.Threshold, opts...)
	case domain.FormatNDJSON:
		return NewNdJsonChunker(r, cfg.Threshold, cfg.Transform), nil
	default:
		return nil, fmt.Errorf("format %s is not chunked", format)
	}
}
