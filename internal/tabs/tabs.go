// Package tabs persists the open-file set between runs in a small JSON sidecar
// shaped as [{"path": ..., "is_modified": ...}].
//
// The sidecar is rewritten when the open-file set changes and after saves, not
// on every edit, so is_modified is informational. Restored tabs always come
// back clean.
package tabs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/Paintersrp/nodian/internal/document"
)

type Sidecar struct {
	path string
}

func NewSidecar(path string) *Sidecar {
	return &Sidecar{path: path}
}

func (s *Sidecar) Path() string {
	return s.path
}

// Load returns the persisted open files. A missing sidecar is an empty
// session. Hand-edited files may carry comments or trailing commas.
func (s *Sidecar) Load() ([]document.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path, err)
	}

	var docs []document.Document
	if err := json.Unmarshal(standardized, &docs); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", s.path, err)
	}
	return docs, nil
}

// Save replaces the sidecar with docs.
func (s *Sidecar) Save(docs []document.Document) error {
	if docs == nil {
		docs = []document.Document{}
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write session %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the sidecar. Clearing a missing sidecar is not an error.
func (s *Sidecar) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session %s: %w", s.path, err)
	}
	return nil
}
