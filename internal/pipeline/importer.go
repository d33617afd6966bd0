package pipeline

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"github.com/docship/docship/internal/adapters/fs"
	httpadapter "github.com/docship/docship/internal/adapters/http"
	"github.com/docship/docship/internal/adapters/progress"
	"github.com/docship/docship/internal/chunk"
	"github.com/docship/docship/internal/domain"
	"github.com/docship/docship/internal/ports"
	"github.com/docship/docship/pkg/log"
)

// Default tuning values.
const (
	// DefaultBatchBytes matches the original 90 MB (decimal) default.
	DefaultBatchBytes = 90 * 1000 * 1000

	DefaultQueueSize    = 100
	DefaultMaxAttempts  = 20
	DefaultRetryMinWait = 100 * time.Millisecond
	DefaultRetryMaxWait = time.Hour
)

// Config holds the delivery configuration shared by all input files of a run.
type Config struct {
	// ServiceURL is the base URL of the ingestion service.
	ServiceURL string

	// Index is the remote index documents are delivered into.
	Index string

	// PrimaryKey optionally names the primary key field.
	PrimaryKey string

	// APIKey is the bearer credential; empty disables authentication.
	APIKey string

	// Operation frames delivery as replace (POST) or update (PUT).
	Operation domain.Operation

	// Format overrides extension detection when not FormatUnknown.
	Format domain.Format

	// BatchBytes is the batch size threshold in bytes.
	BatchBytes int

	// Delimiter is the CSV field delimiter; zero means ','.
	Delimiter rune

	// FlexibleFields accepts ragged CSV rows.
	FlexibleFields bool

	// StripFields names top-level fields removed from every NDJSON record
	// before it is measured and sent.
	StripFields []string

	// Jobs is the sender worker count. With more than one job, batches may
	// reach the endpoint out of order.
	Jobs int

	// SkipBatches is the resume offset: batches with a lower index count
	// toward progress but are never transmitted.
	SkipBatches uint64

	// QueueSize is the bounded channel capacity between producer and
	// workers.
	QueueSize int

	// MaxAttempts bounds delivery attempts per batch.
	MaxAttempts int

	// RetryMinWait and RetryMaxWait bound the backoff schedule.
	RetryMinWait time.Duration
	RetryMaxWait time.Duration

	// HTTPTimeout applies to the default HTTP client; zero means none.
	HTTPTimeout time.Duration
}

// withDefaults fills in zero values.
func (c Config) withDefaults() Config {
	if c.BatchBytes <= 0 {
		c.BatchBytes = DefaultBatchBytes
	}
	if c.Jobs <= 0 {
		c.Jobs = 1
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryMinWait <= 0 {
		c.RetryMinWait = DefaultRetryMinWait
	}
	if c.RetryMaxWait <= 0 {
		c.RetryMaxWait = DefaultRetryMaxWait
	}
	return c
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.ServiceURL == "" {
		return fmt.Errorf("service url is required")
	}
	if c.Index == "" {
		return fmt.Errorf("index is required")
	}
	return nil
}

// Importer drives end-to-end delivery of input files.
type Importer struct {
	cfg      Config
	client   ports.HTTPClient
	sender   ports.DocumentSender
	progress ports.ProgressSink
	logger   log.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets a custom logger. Default is a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithProgress sets the progress sink. Default discards progress.
func WithProgress(sink ports.ProgressSink) Option {
	return func(i *Importer) {
		if sink != nil {
			i.progress = sink
		}
	}
}

// WithHTTPClient sets the HTTP client used by the default sender.
func WithHTTPClient(client ports.HTTPClient) Option {
	return func(i *Importer) {
		if client != nil {
			i.client = client
		}
	}
}

// WithSender replaces the default HTTP document sender entirely.
func WithSender(sender ports.DocumentSender) Option {
	return func(i *Importer) {
		if sender != nil {
			i.sender = sender
		}
	}
}

// New creates an Importer for the given configuration.
func New(cfg Config, opts ...Option) (*Importer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	imp := &Importer{
		cfg:      cfg,
		progress: progress.NewNoop(),
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(imp)
	}

	if imp.sender == nil {
		client := imp.client
		if client == nil {
			client = &nethttp.Client{Timeout: cfg.HTTPTimeout}
		}
		imp.sender = httpadapter.NewDocumentSender(client, imp.logger)
	}
	return imp, nil
}

// ImportFiles imports the given paths in order, stopping at the first fatal
// error.
func (imp *Importer) ImportFiles(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := imp.ImportFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// ImportFile delivers one input file (or standard input for "-") end to end.
func (imp *Importer) ImportFile(ctx context.Context, path string) error {
	format := imp.cfg.Format
	if format == domain.FormatUnknown {
		var err error
		if format, err = domain.FormatFromPath(path); err != nil {
			return err
		}
	}

	in, size, err := fs.OpenInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	imp.logger.Info("importing",
		log.String("path", path),
		log.String("format", format.String()),
		log.Int("jobs", imp.cfg.Jobs),
		log.Uint64("skip_batches", imp.cfg.SkipBatches),
	)

	target := imp.target(format)

	if format == domain.FormatJSON {
		return imp.importWhole(ctx, path, in, target)
	}

	var transform chunk.Transform
	if len(imp.cfg.StripFields) > 0 {
		transform = chunk.DropFields(imp.cfg.StripFields...)
	}
	chunker, err := chunk.New(format, in, chunk.Config{
		Threshold:      imp.cfg.BatchBytes,
		Delimiter:      imp.cfg.Delimiter,
		FlexibleFields: imp.cfg.FlexibleFields,
		Transform:      transform,
	})
	if err != nil {
		return err
	}

	var total int
	if size > 0 {
		total = int(size/int64(imp.cfg.BatchBytes)) + 1
	}
	imp.progress.Start(total)
	defer imp.progress.Finish()

	return imp.run(ctx, chunker, target)
}

// importWhole sends a whole JSON document as a single batch, subject to the
// same skip and progress accounting as chunked delivery.
func (imp *Importer) importWhole(ctx context.Context, path string, in io.Reader, target ports.Target) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return &domain.InputError{Path: path, Err: err}
	}

	imp.progress.Start(1)
	defer imp.progress.Finish()

	return imp.deliver(ctx, domain.Batch{Index: 0, Data: data, Docs: 1}, target)
}

func (imp *Importer) target(format domain.Format) ports.Target {
	return ports.Target{
		ServiceURL: imp.cfg.ServiceURL,
		Index:      imp.cfg.Index,
		PrimaryKey: imp.cfg.PrimaryKey,
		APIKey:     imp.cfg.APIKey,
		Operation:  imp.cfg.Operation,
		Format:     format,
	}
}
