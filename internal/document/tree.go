package document

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/nodian/internal/pathutil"
)

// FileTree lists every markdown file under the root, depth first in lexical
// order, as root-relative slash-separated paths. Hidden directories are
// skipped, as are directories that cannot be read.
func (s *Store) FileTree() ([]string, error) {
	paths := make([]string, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != s.root && errors.Is(err, fs.ErrPermission) {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return err
		}

		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		rel, err := pathutil.RootRelative(s.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}
