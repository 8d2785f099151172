package state

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/nodian/internal/pathutil"
)

// RootWatcher reports markdown changes anywhere under the notes root,
// including directories created after it started.
type RootWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	onChange func(string)
	onError  func(error)
	onClose  func()
}

func NewRootWatcher(root string) (*RootWatcher, error) {
	normalizedRoot := pathutil.NormalizePath(root)
	if normalizedRoot == "" {
		return nil, errors.New("root directory cannot be empty")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watcher := &RootWatcher{
		watcher: w,
		root:    normalizedRoot,
		done:    make(chan struct{}),
	}

	if err := watcher.addRecursive(normalizedRoot); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return watcher, nil
}

// Run delivers events to the registered callbacks until Close is called.
func (w *RootWatcher) Run() {
	if w == nil {
		return
	}

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !isHidden(filepath.Base(event.Name)) {
						_ = w.addRecursive(event.Name)
					}
					continue
				}
			}

			if !w.isRelevant(event) {
				continue
			}

			rel, err := w.relativePath(event.Name)
			if err != nil || rel == "" {
				continue
			}

			if fn := w.changeHandler(); fn != nil {
				fn(rel)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if fn := w.errorHandler(); err != nil && fn != nil {
				fn(err)
			}
		}
	}
}

func (w *RootWatcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()

		w.mu.Lock()
		fn := w.onClose
		w.mu.Unlock()
		if fn != nil {
			fn()
		}
	})

	return closeErr
}

// OnChange registers a callback that receives root-relative note paths
// whenever the watcher detects a relevant change.
func (w *RootWatcher) OnChange(fn func(string)) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

func (w *RootWatcher) OnError(fn func(error)) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.onError = fn
	w.mu.Unlock()
}

// OnClose registers a callback that is invoked exactly once when the watcher
// shuts down.
func (w *RootWatcher) OnClose(fn func()) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.onClose = fn
	w.mu.Unlock()
}

func (w *RootWatcher) changeHandler() func(string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.onChange
}

func (w *RootWatcher) errorHandler() func(error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.onError
}

func (w *RootWatcher) addRecursive(root string) error {
	normalized := pathutil.NormalizePath(root)
	return filepath.WalkDir(normalized, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}

		if !d.IsDir() {
			return nil
		}
		if path != normalized && isHidden(d.Name()) {
			return filepath.SkipDir
		}

		return w.watcher.Add(path)
	})
}

func (w *RootWatcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	rel, err := w.relativePath(event.Name)
	if err != nil || rel == "" {
		return false
	}

	return strings.EqualFold(filepath.Ext(rel), ".md")
}

func (w *RootWatcher) relativePath(path string) (string, error) {
	rel, err := pathutil.RootRelative(w.root, pathutil.NormalizePath(path))
	if err != nil {
		return "", err
	}

	if rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
		return "", nil
	}

	return rel, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
