// Package cliconfig resolves the docship CLI configuration from flags,
// environment variables, and an optional TOML file, in that order of
// precedence.
package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/docship/docship/internal/domain"
)

// Config holds CLI configuration for docship.
type Config struct {
	URL        string
	Index      string
	PrimaryKey string
	APIKey     string

	Format         string
	BatchSize      string
	Delimiter      string
	FlexibleFields bool
	StripFields    []string

	Jobs        int
	SkipBatches uint64
	Operation   string
	HTTPTimeout time.Duration
	Watch       bool
	Quiet       bool

	// Derived during Validate.
	BatchBytes    int
	DelimiterRune rune
	ParsedFormat  domain.Format
	ParsedOp      domain.Operation
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BatchSize: "90MB",
		Delimiter: ",",
		Jobs:      1,
		Operation: "add-or-replace",
		APIKey:    os.Getenv("DOCSHIP_API_KEY"),
	}
}

// Validate checks the configuration for errors and computes derived values.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.Index == "" {
		return fmt.Errorf("index is required")
	}

	// Ensure no trailing slash
	c.URL = strings.TrimRight(c.URL, "/")

	size, err := humanize.ParseBytes(c.BatchSize)
	if err != nil {
		return fmt.Errorf("parse batch-size %q: %w", c.BatchSize, err)
	}
	if size == 0 {
		return fmt.Errorf("batch-size must be positive")
	}
	c.BatchBytes = int(size)

	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	c.DelimiterRune, _ = utf8.DecodeRuneInString(c.Delimiter)

	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1")
	}

	if c.Format != "" {
		if c.ParsedFormat, err = domain.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	if c.ParsedOp, err = domain.ParseOperation(c.Operation); err != nil {
		return err
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a string slice if non-empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not
// changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setUintFromString parses a string to uint64 and sets the destination.
func (s *configSetter) setUintFromString(flag, value string, dst *uint64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	u, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = u
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
