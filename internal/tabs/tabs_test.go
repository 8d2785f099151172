package tabs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Paintersrp/nodian/internal/document"
)

func TestSaveThenLoad(t *testing.T) {
	t.Parallel()

	s := NewSidecar(filepath.Join(t.TempDir(), "state", "open_files.json"))
	docs := []document.Document{
		{Path: "/notes/a.md", IsModified: true},
		{Path: "/notes/b.md"},
	}

	if err := s.Save(docs); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(docs, got); diff != "" {
		t.Fatalf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	t.Parallel()

	s := NewSidecar(filepath.Join(t.TempDir(), "open_files.json"))
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Load() = %v, want empty", got)
	}
}

func TestLoadAcceptsCommentsAndTrailingCommas(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "open_files.json")
	content := `[
  // pinned for today
  {"path": "/notes/a.md", "is_modified": false,},
]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write sidecar: %v", err)
	}

	got, err := NewSidecar(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff([]document.Document{{Path: "/notes/a.md"}}, got); diff != "" {
		t.Fatalf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCorruptFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "open_files.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write sidecar: %v", err)
	}

	if _, err := NewSidecar(path).Load(); err == nil {
		t.Fatalf("Load returned nil error for corrupt sidecar")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewSidecar(filepath.Join(t.TempDir(), "open_files.json"))
	if err := s.Save(nil); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Clear(); err != nil {
			t.Fatalf("Clear returned error: %v", err)
		}
	}
}
