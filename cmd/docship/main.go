package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/docship/docship/internal/adapters/progress"
	"github.com/docship/docship/internal/cliconfig"
	"github.com/docship/docship/internal/pipeline"
	"github.com/docship/docship/internal/ports"
	"github.com/docship/docship/pkg/log"
)

const helpDescription = `
Upload large CSV, NDJSON, or JSON files to a document ingestion service in
size-bounded gzip batches.

Highlights:
  - Splits inputs into batches that never exceed --batch-size before compression.
  - Retries failed batches with exponential backoff; resumes with --skip-batches.
  - Uploads concurrently with --jobs; configure via file, env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  docship --url https://docs.example.com --index movies movies.ndjson
  docship --url https://docs.example.com --index movies --batch-size 10MB --jobs 4 dump/*.csv
  cat movies.ndjson | docship --url https://docs.example.com --index movies --format ndjson -
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	zlog := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "docship [flags] <file>...",
		Short:   "Batch-upload document files to an ingestion service",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.docship/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment variables (DOCSHIP_*) override file config but are
			// overridden by flags (checked via changed map).
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			// Validate and compute derived values
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking API key)
			logCfg := cfg
			if len(logCfg.APIKey) > 0 {
				logCfg.APIKey = "*****"
			}
			zlog.Info().Interface("config", logCfg).Msg("configuration")

			imp, err := newImporter(cfg)
			if err != nil {
				return fmt.Errorf("create importer: %w", err)
			}

			// Graceful shutdown on SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Watch {
				// In watch mode, positional arguments are directories.
				if err := imp.Watch(ctx, args); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			return imp.ImportFiles(ctx, args)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.docship/config.toml)")
	root.Flags().StringVar(&cfg.URL, "url", cfg.URL, "base URL of the ingestion service")
	root.Flags().StringVar(&cfg.Index, "index", cfg.Index, "index to deliver documents into")
	root.Flags().StringVar(&cfg.PrimaryKey, "primary-key", cfg.PrimaryKey, "primary key field of the documents (optional)")
	root.Flags().StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key for authentication (or DOCSHIP_API_KEY)")

	root.Flags().StringVar(&cfg.Format, "format", cfg.Format, "input format: json, ndjson, or csv (default: from file extension)")
	root.Flags().StringVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "maximum uncompressed bytes per batch (e.g. 90MB, 512KiB)")
	root.Flags().StringVar(&cfg.Delimiter, "delimiter", cfg.Delimiter, "CSV field delimiter")
	root.Flags().BoolVar(&cfg.FlexibleFields, "flexible-fields", cfg.FlexibleFields, "accept CSV rows with a varying number of fields")
	root.Flags().StringSliceVar(&cfg.StripFields, "strip-fields", cfg.StripFields, "top-level fields to remove from every NDJSON record")

	root.Flags().IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "number of concurrent upload workers")
	root.Flags().Uint64Var(&cfg.SkipBatches, "skip-batches", cfg.SkipBatches, "number of leading batches to skip (resume)")
	root.Flags().StringVar(&cfg.Operation, "upload-operation", cfg.Operation, "add-or-replace (POST) or add-or-update (PUT)")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout (0 means none)")
	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "watch the given directories and import newly created files")
	root.Flags().BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "suppress the progress display")

	if err := root.Execute(); err != nil {
		zlog.Error().Err(err).Msg("docship")
		os.Exit(1)
	}
}

// newImporter wires the pipeline from the resolved CLI configuration.
func newImporter(cfg cliconfig.Config) (*pipeline.Importer, error) {
	var sink ports.ProgressSink
	if cfg.Quiet {
		sink = progress.NewNoop()
	} else {
		sink = progress.NewTracker(os.Stderr)
	}

	return pipeline.New(pipeline.Config{
		ServiceURL:     cfg.URL,
		Index:          cfg.Index,
		PrimaryKey:     cfg.PrimaryKey,
		APIKey:         cfg.APIKey,
		Operation:      cfg.ParsedOp,
		Format:         cfg.ParsedFormat,
		BatchBytes:     cfg.BatchBytes,
		Delimiter:      cfg.DelimiterRune,
		FlexibleFields: cfg.FlexibleFields,
		StripFields:    cfg.StripFields,
		Jobs:           cfg.Jobs,
		SkipBatches:    cfg.SkipBatches,
		HTTPTimeout:    cfg.HTTPTimeout,
	},
		pipeline.WithLogger(log.NewZerologLogger(cliconfig.Logger())),
		pipeline.WithProgress(sink),
	)
}
