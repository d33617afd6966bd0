package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type FileConfig struct {
	URL            string   `toml:"url"`
	Index          string   `toml:"index"`
	PrimaryKey     string   `toml:"primary_key"`
	APIKey         string   `toml:"api_key"`
	Format         string   `toml:"format"`
	BatchSize      string   `toml:"batch_size"`
	Delimiter      string   `toml:"delimiter"`
	FlexibleFields *bool    `toml:"flexible_fields"`
	StripFields    []string `toml:"strip_fields"`
	Jobs           int      `toml:"jobs"`
	SkipBatches    *uint64  `toml:"skip_batches"`
	Operation      string   `toml:"upload_operation"`
	HTTPTimeout    string   `toml:"http_timeout"`
	Watch          *bool    `toml:"watch"`
	Quiet          *bool    `toml:"quiet"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.docship/config.toml if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".docship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", fc.URL, &cfg.URL)
	s.setString("index", fc.Index, &cfg.Index)
	s.setString("primary-key", fc.PrimaryKey, &cfg.PrimaryKey)
	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("format", fc.Format, &cfg.Format)
	s.setString("batch-size", fc.BatchSize, &cfg.BatchSize)
	s.setString("delimiter", fc.Delimiter, &cfg.Delimiter)
	s.setString("upload-operation", fc.Operation, &cfg.Operation)
	s.setStrings("strip-fields", fc.StripFields, &cfg.StripFields)

	s.setInt("jobs", fc.Jobs, &cfg.Jobs)
	if fc.SkipBatches != nil && !changed["skip-batches"] {
		cfg.SkipBatches = *fc.SkipBatches
	}

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBool("flexible-fields", fc.FlexibleFields, &cfg.FlexibleFields)
	s.setBool("watch", fc.Watch, &cfg.Watch)
	s.setBool("quiet", fc.Quiet, &cfg.Quiet)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
