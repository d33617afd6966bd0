// Package docship uploads large CSV, NDJSON, and JSON files to a document
// ingestion service in size-bounded gzip batches.
//
// Example usage:
//
//	cfg := docship.Config{
//	    ServiceURL: "https://docs.example.com",
//	    Index:      "movies",
//	    APIKey:     "your-api-key",
//	}
//	if err := docship.Import(context.Background(), cfg, []string{"movies.ndjson"}); err != nil {
//	    log.Fatal(err)
//	}
package docship

import (
	"context"

	"github.com/docship/docship/internal/pipeline"
)

// Config holds the delivery configuration for an import run.
// Zero values fall back to the documented defaults.
type Config = pipeline.Config

// Importer drives end-to-end delivery of input files.
type Importer = pipeline.Importer

// Option configures an Importer.
type Option = pipeline.Option

// Re-exported options for library callers.
var (
	WithLogger     = pipeline.WithLogger
	WithProgress   = pipeline.WithProgress
	WithHTTPClient = pipeline.WithHTTPClient
	WithSender     = pipeline.WithSender
)

// New creates an Importer for the given configuration.
func New(cfg Config, opts ...Option) (*Importer, error) {
	return pipeline.New(cfg, opts...)
}

// Import uploads the given files with the given configuration. It blocks
// until every file is delivered or the first fatal error occurs.
func Import(ctx context.Context, cfg Config, paths []string, opts ...Option) error {
	imp, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	return imp.ImportFiles(ctx, paths)
}
