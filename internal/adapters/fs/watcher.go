package fs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docship/docship/internal/domain"
	"github.com/docship/docship/pkg/log"
)

// DefaultDebounceDelay is how long a file must stay quiet after its last
// write before it is considered complete and handed to the import handler.
const DefaultDebounceDelay = 500 * time.Millisecond

// Watcher monitors directories and reports newly created files with a
// recognized import extension once writes to them have settled.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   log.Logger
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string
}

// NewWatcher creates a watcher over the given directories. debounce <= 0
// selects DefaultDebounceDelay.
func NewWatcher(dirs []string, debounce time.Duration, logger log.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounceDelay
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return &Watcher{
		fsw:      fsw,
		logger:   logger,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		ready:    make(chan string, 16),
	}, nil
}

// Run dispatches settled files to handle until the context is canceled or
// handle returns an error. Files whose extension is not an import format are
// ignored.
func (w *Watcher) Run(ctx context.Context, handle func(path string) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path := <-w.ready:
			w.logger.Info("new file detected", log.String("path", path))
			if err := handle(path); err != nil {
				return err
			}

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, err := domain.FormatFromPath(event.Name); err != nil {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", log.Err(err))
		}
	}
}

// schedule (re)arms the debounce timer for path. The timer fires only after
// the file has been quiet for the debounce delay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
}

// Close stops the underlying file system watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
