package session

import (
	"fmt"

	"github.com/Paintersrp/nodian/internal/document"
)

// Intent is a request from the UI boundary to change session state. Intents are
// applied strictly in the order they were dispatched.
type Intent interface {
	fmt.Stringer
	apply(s *document.Store) error
}

type CreateFile struct {
	Name string
}

type OpenFile struct {
	Path string
}

type CloseFile struct {
	Path string
}

type SaveFile struct{}

type EditContent struct {
	Text string
}

// Refresh changes nothing and only re-derives the snapshot, e.g. after the
// file tree changed on disk.
type Refresh struct{}

func (i CreateFile) apply(s *document.Store) error { return s.Create(i.Name) }
func (i OpenFile) apply(s *document.Store) error   { return s.Open(i.Path) }
func (i CloseFile) apply(s *document.Store) error  { return s.Close(i.Path) }
func (SaveFile) apply(s *document.Store) error     { return s.Save() }
func (Refresh) apply(*document.Store) error        { return nil }

func (i EditContent) apply(s *document.Store) error {
	s.Edit(i.Text)
	return nil
}

func (i CreateFile) String() string  { return "create " + i.Name }
func (i OpenFile) String() string    { return "open " + i.Path }
func (i CloseFile) String() string   { return "close " + i.Path }
func (SaveFile) String() string      { return "save" }
func (i EditContent) String() string { return fmt.Sprintf("edit (%d bytes)", len(i.Text)) }
func (Refresh) String() string       { return "refresh" }

// persistsSession reports whether a successful intent may have altered the
// open-file set or a modified flag worth recording. Edits are left out so
// typing never touches the disk.
func persistsSession(i Intent) bool {
	switch i.(type) {
	case CreateFile, OpenFile, CloseFile, SaveFile:
		return true
	}
	return false
}
