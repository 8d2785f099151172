package document

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrNotFound and ErrPermissionDenied classify filesystem failures. Match them
// with errors.Is against any error returned by the store.
var (
	ErrNotFound         = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// ErrNotOpen is returned when closing a path that is not in the open-file set.
var ErrNotOpen = errors.New("file not open")

// ErrNoActiveFile is returned by Save when no document is active.
var ErrNoActiveFile = errors.New("no active file")

// Kind classifies an IOError.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindPermissionDenied
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	default:
		return "other"
	}
}

// IOError reports a failed filesystem read or write against a document.
type IOError struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrPermissionDenied:
		return e.Kind == KindPermissionDenied
	}
	return false
}

func newIOError(op, path string, err error) *IOError {
	kind := KindOther
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermissionDenied
	}
	return &IOError{Op: op, Path: path, Kind: kind, Err: err}
}
