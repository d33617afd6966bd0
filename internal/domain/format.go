package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the wire format of an input file.
type Format int

const (
	// FormatUnknown is the zero value; callers resolve it from the file
	// extension or an explicit override before processing starts.
	FormatUnknown Format = iota

	// FormatJSON is a single JSON document, sent whole.
	FormatJSON

	// FormatNDJSON is newline-delimited JSON, one object per line.
	FormatNDJSON

	// FormatCSV is comma- (or custom-) separated values with a header row.
	FormatCSV
)

// String returns the canonical name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatNDJSON:
		return "ndjson"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type sent in the Content-Type header.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatNDJSON:
		return "application/x-ndjson"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath resolves the format of a file from its extension.
// Recognized extensions are .json, .ndjson, .jsonl and .csv.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".ndjson", ".jsonl":
		return FormatNDJSON, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return FormatUnknown, &InputError{Path: path, Err: ErrUnknownFormat}
	}
}
