package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docship/docship/pkg/log"
)

func TestWatcherReportsSettledFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher([]string{dir}, 50*time.Millisecond, log.NewNoopLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(path string) error {
			got <- path
			cancel()
			return nil
		})
	}()

	// Let the watch loop start before creating the file.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "drop.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-got:
		if p != path {
			t.Errorf("path = %q, want %q", p, path)
		}
	case <-ctx.Done():
		t.Fatal("watcher did not report the new file")
	}
	<-done
}

func TestWatcherRejectsMissingDir(t *testing.T) {
	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "absent")}, 0, log.NewNoopLogger())
	if err == nil {
		t.Fatal("NewWatcher() = nil, want error for missing directory")
	}
}
