package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Paintersrp/nodian/internal/document"
	"github.com/Paintersrp/nodian/internal/markdown"
)

type countingRenderer struct {
	calls atomic.Int32
}

func (r *countingRenderer) Render(source string) string {
	r.calls.Add(1)
	return markdown.Render(source)
}

type recordingPersister struct {
	mu    sync.Mutex
	saves [][]document.Document
}

func (p *recordingPersister) Save(docs []document.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, docs)
	return nil
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *document.Store) {
	t.Helper()

	store, err := document.New(t.TempDir())
	if err != nil {
		t.Fatalf("document.New returned error: %v", err)
	}

	c := New(store, markdown.NewRenderer(), opts...)
	startController(t, c)
	return c, store
}

func startController(t *testing.T, c *Controller) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(finished)
	}()
	t.Cleanup(func() {
		cancel()
		<-finished
	})
}

func mustDo(t *testing.T, c *Controller, intent Intent) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := c.Do(ctx, intent)
	if err != nil {
		t.Fatalf("Do(%s) returned error: %v", intent, err)
	}
	return snap
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

func assertActiveInTabs(t *testing.T, snap Snapshot) {
	t.Helper()
	if snap.ActivePath == "" {
		return
	}
	active, ok := snap.Active()
	if !ok || active.Path != snap.ActivePath {
		t.Fatalf("active path %q not among tabs %v", snap.ActivePath, snap.Tabs)
	}
}

func TestCreateProducesSnapshot(t *testing.T) {
	t.Parallel()

	c, store := newTestController(t)
	snap := mustDo(t, c, CreateFile{Name: "a.md"})

	if diff := cmp.Diff([]string{"a.md"}, snap.FileTree); diff != "" {
		t.Fatalf("FileTree mismatch (-want +got):\n%s", diff)
	}

	want := []Tab{{
		DisplayPath: "a.md",
		Path:        filepath.Join(store.Root(), "a.md"),
		IsActive:    true,
	}}
	if diff := cmp.Diff(want, snap.Tabs); diff != "" {
		t.Fatalf("Tabs mismatch (-want +got):\n%s", diff)
	}
	if snap.EditorContent != "" {
		t.Fatalf("EditorContent = %q, want empty", snap.EditorContent)
	}
	if _, ok := snap.Intent.(CreateFile); !ok || snap.Err != nil {
		t.Fatalf("snapshot intent/err = %v/%v, want create/nil", snap.Intent, snap.Err)
	}
}

func TestEditSaveWritesDisk(t *testing.T) {
	t.Parallel()

	c, store := newTestController(t)
	path := filepath.Join(store.Root(), "a.md")
	mustWriteFile(t, path, "")

	mustDo(t, c, OpenFile{Path: "a.md"})
	snap := mustDo(t, c, EditContent{Text: "# Hi"})

	if !snap.Tabs[0].IsModified {
		t.Fatalf("tab not marked modified after edit: %v", snap.Tabs)
	}
	if !strings.Contains(snap.PreviewHTML, "<h1") || !strings.Contains(snap.PreviewHTML, "Hi</h1>") {
		t.Fatalf("preview not rendered from current content: %q", snap.PreviewHTML)
	}

	snap = mustDo(t, c, SaveFile{})
	if snap.Tabs[0].IsModified {
		t.Fatalf("tab still modified after save: %v", snap.Tabs)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if string(data) != "# Hi" {
		t.Fatalf("saved content = %q, want %q", data, "# Hi")
	}
}

func TestFailedIntentKeepsSessionUsable(t *testing.T) {
	t.Parallel()

	c, store := newTestController(t)
	mustWriteFile(t, filepath.Join(store.Root(), "a.md"), "a")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := c.Do(ctx, OpenFile{Path: "missing.md"})
	if !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("Do(open missing) returned %v, want ErrNotFound", err)
	}
	if !errors.Is(snap.Err, document.ErrNotFound) {
		t.Fatalf("snapshot Err = %v, want ErrNotFound", snap.Err)
	}

	if _, err := c.Do(ctx, SaveFile{}); !errors.Is(err, document.ErrNoActiveFile) {
		t.Fatalf("Do(save) returned %v, want ErrNoActiveFile", err)
	}
	if _, err := c.Do(ctx, CloseFile{Path: "a.md"}); !errors.Is(err, document.ErrNotOpen) {
		t.Fatalf("Do(close) returned %v, want ErrNotOpen", err)
	}

	snap = mustDo(t, c, OpenFile{Path: "a.md"})
	if snap.EditorContent != "a" {
		t.Fatalf("EditorContent = %q, want %q", snap.EditorContent, "a")
	}
}

func TestIntentsApplyInArrivalOrder(t *testing.T) {
	t.Parallel()

	c, store := newTestController(t)
	path := filepath.Join(store.Root(), "a.md")
	mustWriteFile(t, path, "")

	var mu sync.Mutex
	var seen []string
	c.OnSnapshot(func(s Snapshot) {
		if s.Intent == nil {
			return
		}
		mu.Lock()
		seen = append(seen, s.Intent.String())
		mu.Unlock()
	})

	intents := []Intent{OpenFile{Path: "a.md"}}
	for i := 0; i < 20; i++ {
		intents = append(intents, EditContent{Text: strings.Repeat("x", i)})
	}
	intents = append(intents, CloseFile{Path: "a.md"}, EditContent{Text: "after close"})

	for _, intent := range intents {
		if err := c.Dispatch(intent); err != nil {
			t.Fatalf("Dispatch(%s) returned error: %v", intent, err)
		}
	}
	last := mustDo(t, c, Refresh{})

	want := make([]string, 0, len(intents)+1)
	for _, intent := range intents {
		want = append(want, intent.String())
	}
	want = append(want, Refresh{}.String())

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("published intents mismatch (-want +got):\n%s", diff)
	}

	// The edit after close must not resurrect a buffer.
	if last.ActivePath != "" || last.EditorContent != "" || len(last.Tabs) != 0 {
		t.Fatalf("unexpected state after close: %+v", last)
	}
}

func TestConcurrentProducersKeepActiveInvariant(t *testing.T) {
	t.Parallel()

	c, store := newTestController(t)
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		mustWriteFile(t, filepath.Join(store.Root(), name), name)
	}

	var violations atomic.Int32
	c.OnSnapshot(func(s Snapshot) {
		if s.ActivePath == "" {
			return
		}
		if active, ok := s.Active(); !ok || active.Path != s.ActivePath {
			violations.Add(1)
		}
	})

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			names := []string{"a.md", "b.md", "c.md"}
			for i := 0; i < 25; i++ {
				name := names[(g+i)%len(names)]
				_ = c.Dispatch(OpenFile{Path: name})
				_ = c.Dispatch(EditContent{Text: fmt.Sprintf("%d-%d", g, i)})
				if i%5 == 0 {
					_ = c.Dispatch(CloseFile{Path: name})
				}
			}
		}(g)
	}
	wg.Wait()

	snap := mustDo(t, c, Refresh{})
	assertActiveInTabs(t, snap)

	if n := violations.Load(); n != 0 {
		t.Fatalf("%d snapshots had an active path missing from tabs", n)
	}

	seen := make(map[string]bool)
	for _, tab := range snap.Tabs {
		if seen[tab.Path] {
			t.Fatalf("duplicate tab %q in %v", tab.Path, snap.Tabs)
		}
		seen[tab.Path] = true
	}
}

func TestDisplayPathFallsBackOutsideRoot(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t)
	outside := filepath.Join(t.TempDir(), "outside.md")
	mustWriteFile(t, outside, "elsewhere")

	snap := mustDo(t, c, OpenFile{Path: outside})
	if len(snap.Tabs) != 1 || snap.Tabs[0].DisplayPath != outside {
		t.Fatalf("Tabs = %v, want display path %q", snap.Tabs, outside)
	}
}

func TestPreviewIsCachedByContent(t *testing.T) {
	t.Parallel()

	store, err := document.New(t.TempDir())
	if err != nil {
		t.Fatalf("document.New returned error: %v", err)
	}
	renderer := &countingRenderer{}
	c := New(store, renderer)

	first := c.Snapshot()
	second := c.Snapshot()

	if first.PreviewHTML != second.PreviewHTML {
		t.Fatalf("previews differ for identical content")
	}
	if n := renderer.calls.Load(); n != 1 {
		t.Fatalf("renderer called %d times, want 1", n)
	}
}

func TestPersisterCalledOnOpenSetChangesAndSaves(t *testing.T) {
	t.Parallel()

	persister := &recordingPersister{}
	c, store := newTestController(t, WithPersister(persister))
	mustWriteFile(t, filepath.Join(store.Root(), "a.md"), "a")

	mustDo(t, c, OpenFile{Path: "a.md"})
	mustDo(t, c, EditContent{Text: "b"})
	mustDo(t, c, SaveFile{})
	mustDo(t, c, CloseFile{Path: "a.md"})

	if n := persister.count(); n != 3 {
		t.Fatalf("persister called %d times, want 3", n)
	}
	persister.mu.Lock()
	defer persister.mu.Unlock()
	if saved := persister.saves[1]; len(saved) != 1 || saved[0].IsModified {
		t.Fatalf("set persisted after save = %v, want a.md clean", saved)
	}
	if len(persister.saves[2]) != 0 {
		t.Fatalf("last persisted set = %v, want empty", persister.saves[2])
	}
}

func TestRefreshIntervalPublishes(t *testing.T) {
	t.Parallel()

	published := make(chan Snapshot, 1)
	c, _ := newTestController(t, WithRefreshInterval(10*time.Millisecond))
	c.OnSnapshot(func(s Snapshot) {
		select {
		case published <- s:
		default:
		}
	})

	select {
	case snap := <-published:
		if snap.Intent != nil {
			t.Fatalf("periodic snapshot carried intent %v", snap.Intent)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no periodic snapshot published")
	}
}

func TestClosedControllerRejectsIntents(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t)
	if err := c.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if err := c.Dispatch(SaveFile{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Dispatch after close returned %v, want ErrClosed", err)
	}
	if _, err := c.Do(context.Background(), SaveFile{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Do after close returned %v, want ErrClosed", err)
	}
}

func TestQueuedIntentsFailWhenClosedBeforeRun(t *testing.T) {
	t.Parallel()

	store, err := document.New(t.TempDir())
	if err != nil {
		t.Fatalf("document.New returned error: %v", err)
	}
	c := New(store, markdown.NewRenderer())

	errs := make(chan error, 1)
	go func() {
		_, err := c.Do(context.Background(), SaveFile{})
		errs <- err
	}()

	// Wait until the request is queued before closing.
	deadline := time.Now().Add(5 * time.Second)
	for {
		c.qmu.Lock()
		queued := len(c.queue)
		c.qmu.Unlock()
		if queued == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("request was never queued")
		}
		time.Sleep(time.Millisecond)
	}

	_ = c.Close()

	select {
	case err := <-errs:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("Do returned %v, want ErrClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Do did not return after Close")
	}
}
