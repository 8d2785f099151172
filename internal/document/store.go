// Package document owns the mapping between markdown files under a root
// directory and the in-memory editing state: the ordered set of open documents
// and the single buffer holding the active document's content.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines must serialise every method, reads included, behind one lock.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/Paintersrp/nodian/internal/pathutil"
)

// Document is an entry of the open-file set. Its content lives in the store's
// buffer while it is active and nowhere otherwise.
type Document struct {
	Path       string `json:"path"`
	IsModified bool   `json:"is_modified"`
}

type Store struct {
	root    string
	docs    []Document
	active  string
	content string

	readFile   func(string) ([]byte, error)
	writeFile  func(string, []byte) error
	createFile func(string) error
	stat       func(string) (fs.FileInfo, error)
}

// New returns a store rooted at root. The root is made absolute once and
// created if it does not exist yet.
func New(root string) (*Store, error) {
	normalized := pathutil.NormalizePath(root)
	if normalized == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}

	abs, err := filepath.Abs(normalized)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", normalized, err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create root %s: %w", abs, err)
	}

	return &Store{
		root:       abs,
		readFile:   os.ReadFile,
		writeFile:  writeAtomic,
		createFile: truncate,
		stat:       os.Stat,
	}, nil
}

// writeAtomic replaces the file behind path, following symlinks so a linked
// note keeps its link and the target receives the content.
func writeAtomic(path string, data []byte) error {
	target, err := filepath.EvalSymlinks(path)
	if errors.Is(err, fs.ErrNotExist) {
		target = path
	} else if err != nil {
		return err
	}
	return atomic.WriteFile(target, bytes.NewReader(data))
}

func truncate(path string) error {
	return os.WriteFile(path, nil, 0o644)
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// Resolve maps path to its normalized absolute identity.
func (s *Store) Resolve(path string) string {
	return pathutil.Resolve(s.root, path)
}

// Display returns path relative to the root, or path itself when it lives
// outside the root.
func (s *Store) Display(path string) string {
	return pathutil.Display(s.root, path)
}

// Open makes path the active document. A path that is already open is
// reloaded from disk and any unsaved edits to it are discarded. On failure the
// store is left untouched.
func (s *Store) Open(path string) error {
	full := s.Resolve(path)

	data, err := s.readFile(full)
	if err != nil {
		return newIOError("open", full, err)
	}

	if i := s.indexOf(full); i >= 0 {
		s.docs[i].IsModified = false
	} else {
		s.docs = append(s.docs, Document{Path: full})
	}

	s.active = full
	s.content = string(data)
	return nil
}

// Create writes an empty file named name under the root and opens it. An
// existing file is truncated. The empty file stays on disk even when the
// subsequent open fails.
func (s *Store) Create(name string) error {
	full := pathutil.Resolve(s.root, name)
	if full == "" {
		return newIOError("create", name, fs.ErrInvalid)
	}

	if err := s.createFile(full); err != nil {
		return newIOError("create", full, err)
	}

	return s.Open(full)
}

// Close drops path from the open-file set. Closing the active document empties
// the buffer, discarding unsaved edits.
func (s *Store) Close(path string) error {
	full := s.Resolve(path)

	i := s.indexOf(full)
	if i < 0 {
		return fmt.Errorf("close %s: %w", full, ErrNotOpen)
	}

	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	if s.active == full {
		s.active = ""
		s.content = ""
	}
	return nil
}

// Save writes the buffer to the active path. A failed write keeps both the
// buffer and the modified flag.
func (s *Store) Save() error {
	if s.active == "" {
		return ErrNoActiveFile
	}

	if err := s.writeFile(s.active, []byte(s.content)); err != nil {
		return newIOError("save", s.active, err)
	}

	if i := s.indexOf(s.active); i >= 0 {
		s.docs[i].IsModified = false
	}
	return nil
}

// Edit replaces the buffer and marks the active document modified. Without an
// active document the content is dropped.
func (s *Store) Edit(content string) {
	if s.active == "" {
		return
	}

	s.content = content
	if i := s.indexOf(s.active); i >= 0 {
		s.docs[i].IsModified = true
	}
}

// Restore seeds the open-file set from a persisted session. Duplicates and
// entries whose files are gone are dropped, the rest come back clean and
// nothing becomes active.
func (s *Store) Restore(docs []Document) {
	for _, doc := range docs {
		full := s.Resolve(doc.Path)
		if full == "" || s.indexOf(full) >= 0 {
			continue
		}

		info, err := s.stat(full)
		if err != nil || info.IsDir() {
			continue
		}

		s.docs = append(s.docs, Document{Path: full})
	}
}

// OpenFiles returns a copy of the open-file set in insertion order.
func (s *Store) OpenFiles() []Document {
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Current returns the active path, if any.
func (s *Store) Current() (string, bool) {
	return s.active, s.active != ""
}

// Content returns the active buffer.
func (s *Store) Content() string {
	return s.content
}

func (s *Store) indexOf(path string) int {
	for i, doc := range s.docs {
		if doc.Path == path {
			return i
		}
	}
	return -1
}
