package cliconfig

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from environment variables
// (DOCSHIP_*). It respects flags that have been explicitly set (changed
// map). Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", os.Getenv("DOCSHIP_URL"), &cfg.URL)
	s.setString("index", os.Getenv("DOCSHIP_INDEX"), &cfg.Index)
	s.setString("primary-key", os.Getenv("DOCSHIP_PRIMARY_KEY"), &cfg.PrimaryKey)
	s.setString("api-key", os.Getenv("DOCSHIP_API_KEY"), &cfg.APIKey)
	s.setString("format", os.Getenv("DOCSHIP_FORMAT"), &cfg.Format)
	s.setString("batch-size", os.Getenv("DOCSHIP_BATCH_SIZE"), &cfg.BatchSize)
	s.setString("delimiter", os.Getenv("DOCSHIP_DELIMITER"), &cfg.Delimiter)
	s.setString("upload-operation", os.Getenv("DOCSHIP_UPLOAD_OPERATION"), &cfg.Operation)

	if v := os.Getenv("DOCSHIP_STRIP_FIELDS"); v != "" {
		s.setStrings("strip-fields", strings.Split(v, ","), &cfg.StripFields)
	}

	if err := s.setIntFromString("jobs", os.Getenv("DOCSHIP_JOBS"), &cfg.Jobs); err != nil {
		return err
	}
	if err := s.setUintFromString("skip-batches", os.Getenv("DOCSHIP_SKIP_BATCHES"), &cfg.SkipBatches); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("DOCSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBoolFromString("flexible-fields", os.Getenv("DOCSHIP_FLEXIBLE_FIELDS"), &cfg.FlexibleFields)
	s.setBoolFromString("watch", os.Getenv("DOCSHIP_WATCH"), &cfg.Watch)
	s.setBoolFromString("quiet", os.Getenv("DOCSHIP_QUIET"), &cfg.Quiet)

	return nil
}
