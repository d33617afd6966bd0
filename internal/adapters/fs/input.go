// Package fs provides file system adapters: input resolution for import
// paths (including the conventional "-" for standard input) and a directory
// watcher for watch mode.
package fs

import (
	"io"
	"os"

	"github.com/docship/docship/internal/domain"
)

// StdinPath is the conventional path denoting standard input.
const StdinPath = "-"

// OpenInput opens an import path for reading. A literal "-" yields standard
// input with an unknown size. The returned size is the file length in bytes,
// or zero when unknown.
func OpenInput(path string) (io.ReadCloser, int64, error) {
	if path == StdinPath {
		// Never close the process's stdin.
		return io.NopCloser(os.Stdin), 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &domain.InputError{Path: path, Err: err}
	}

	var size int64
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
		size = info.Size()
	}
	return f, size, nil
}
