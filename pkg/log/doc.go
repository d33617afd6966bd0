// Package log provides a logging abstraction for docship components.
//
// This package defines a Logger interface that can be implemented by any
// logging library. Default implementations are provided for zerolog and a
// no-op logger for testing.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger := log.NewZerologLogger(zerolog.New(os.Stderr))
//
// Or use the no-op logger for testing:
//
//	logger := log.NewNoopLogger()
package log
