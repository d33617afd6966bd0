package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/docship/docship/internal/domain"
)

func TestOpenInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.csv")
	content := "a,b\n1,2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, size, err := OpenInput(path)
	if err != nil {
		t.Fatalf("OpenInput() = %v, want nil", err)
	}
	defer r.Close()

	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}
}

func TestOpenInputMissingFile(t *testing.T) {
	_, _, err := OpenInput(filepath.Join(t.TempDir(), "missing.ndjson"))

	var inputErr *domain.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("OpenInput() = %v, want *domain.InputError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestOpenInputStdin(t *testing.T) {
	r, size, err := OpenInput(StdinPath)
	if err != nil {
		t.Fatalf("OpenInput(-) = %v, want nil", err)
	}
	if size != 0 {
		t.Errorf("size = %d, want 0 for stdin", size)
	}
	// Closing the wrapper must not close the real stdin.
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}
