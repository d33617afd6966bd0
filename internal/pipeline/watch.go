package pipeline

import (
	"context"

	"github.com/docship/docship/internal/adapters/fs"
)

// Watch monitors the given directories and imports every newly created file
// with a recognized extension, once writes to it have settled. It returns on
// the first fatal import error or with the context error when ctx is
// canceled.
func (imp *Importer) Watch(ctx context.Context, dirs []string) error {
	w, err := fs.NewWatcher(dirs, fs.DefaultDebounceDelay, imp.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	return w.Run(ctx, func(path string) error {
		return imp.ImportFile(ctx, path)
	})
}
