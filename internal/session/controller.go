// Package session serialises UI intents against a document store and derives
// display snapshots after each one.
//
// Producers call Dispatch (or Do) from any goroutine; a single consumer started
// with Run applies intents one at a time in arrival order. Every read and write
// of the store happens under one mutex, and preview rendering happens after
// that mutex is released.
package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Paintersrp/nodian/internal/cache"
	"github.com/Paintersrp/nodian/internal/document"
)

// ErrClosed is returned for intents dispatched after the controller stopped.
var ErrClosed = errors.New("session controller closed")

const defaultPreviewCacheSize = 64

// Renderer converts markdown into preview HTML. Implementations must be pure
// and safe for concurrent use.
type Renderer interface {
	Render(markdown string) string
}

// Persister stores the open-file set after it changes.
type Persister interface {
	Save(docs []document.Document) error
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithPersister(p Persister) Option {
	return func(c *Controller) {
		c.persist = p
	}
}

// WithRefreshInterval makes Run publish a fresh snapshot every d, picking up
// files added to the tree outside the editor.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.interval = d
	}
}

func WithPreviewCacheSize(n int) Option {
	return func(c *Controller) {
		c.previews = cache.NewLRU[[32]byte, string](n)
	}
}

type request struct {
	intent Intent
	reply  chan result
}

type result struct {
	snap Snapshot
	err  error
}

type Controller struct {
	mu    sync.Mutex
	store *document.Store

	render   Renderer
	previews *cache.LRU[[32]byte, string]
	persist  Persister
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	qmu    sync.Mutex
	queue  []request
	closed bool
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once

	subMu sync.Mutex
	subs  []func(Snapshot)
}

// New wraps store. The controller takes ownership: nothing else may touch the
// store afterwards.
func New(store *document.Store, render Renderer, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		render:   render,
		previews: cache.NewLRU[[32]byte, string](defaultPreviewCacheSize),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSnapshot registers fn to receive every snapshot published by Run. fn runs
// on the consumer goroutine and should hand work off rather than block.
func (c *Controller) OnSnapshot(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	c.subMu.Lock()
	c.subs = append(c.subs, fn)
	c.subMu.Unlock()
}

// Dispatch enqueues intent and returns immediately.
func (c *Controller) Dispatch(intent Intent) error {
	return c.enqueue(request{intent: intent})
}

// Do enqueues intent and waits until it has been applied, returning the
// resulting snapshot and the intent's own error.
func (c *Controller) Do(ctx context.Context, intent Intent) (Snapshot, error) {
	reply := make(chan result, 1)
	if err := c.enqueue(request{intent: intent, reply: reply}); err != nil {
		return Snapshot{}, err
	}

	select {
	case res := <-reply:
		return res.snap, res.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Run consumes intents until ctx is done or Close is called. It must be
// started exactly once.
func (c *Controller) Run(ctx context.Context) {
	defer c.shutdown()

	var ticks <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		if ctx.Err() != nil {
			return
		}

		if req, ok := c.dequeue(); ok {
			c.handle(req)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-c.wake:
		case <-ticks:
			c.publish(c.Snapshot())
		}
	}
}

// Close stops the controller. Intents still queued fail with ErrClosed.
func (c *Controller) Close() error {
	c.shutdown()
	return nil
}

// Snapshot copies the session state under the store lock and renders the
// preview after releasing it.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	docs := c.store.OpenFiles()
	active, _ := c.store.Current()
	content := c.store.Content()
	tree, treeErr := c.store.FileTree()
	c.mu.Unlock()

	if treeErr != nil {
		c.logger.Warn("list file tree", "root", c.store.Root(), "err", treeErr)
	}

	tabs := make([]Tab, 0, len(docs))
	for _, doc := range docs {
		tabs = append(tabs, Tab{
			DisplayPath: c.store.Display(doc.Path),
			Path:        doc.Path,
			IsModified:  doc.IsModified,
			IsActive:    doc.Path == active,
		})
	}

	return Snapshot{
		FileTree:      tree,
		Tabs:          tabs,
		ActivePath:    active,
		EditorContent: content,
		PreviewHTML:   c.preview(content),
		TakenAt:       c.now(),
	}
}

func (c *Controller) handle(req request) {
	c.mu.Lock()
	err := req.intent.apply(c.store)
	var docs []document.Document
	persist := err == nil && c.persist != nil && persistsSession(req.intent)
	if persist {
		docs = c.store.OpenFiles()
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("intent failed", "intent", req.intent.String(), "err", err)
	} else {
		c.logger.Debug("intent applied", "intent", req.intent.String())
	}

	if persist {
		if perr := c.persist.Save(docs); perr != nil {
			c.logger.Warn("persist open files", "err", perr)
		}
	}

	snap := c.Snapshot()
	snap.Intent = req.intent
	snap.Err = err
	c.publish(snap)

	if req.reply != nil {
		req.reply <- result{snap: snap, err: err}
	}
}

func (c *Controller) preview(content string) string {
	if c.render == nil {
		return ""
	}

	key := sha256.Sum256([]byte(content))
	if html, ok := c.previews.Get(key); ok {
		return html
	}

	html := c.render.Render(content)
	c.previews.Put(key, html)
	return html
}

func (c *Controller) publish(snap Snapshot) {
	c.subMu.Lock()
	subs := make([]func(Snapshot), len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (c *Controller) enqueue(req request) error {
	c.qmu.Lock()
	if c.closed {
		c.qmu.Unlock()
		return ErrClosed
	}
	c.queue = append(c.queue, req)
	c.qmu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

func (c *Controller) dequeue() (request, bool) {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	if len(c.queue) == 0 {
		return request{}, false
	}
	req := c.queue[0]
	c.queue[0] = request{}
	c.queue = c.queue[1:]
	return req, true
}

func (c *Controller) shutdown() {
	c.once.Do(func() {
		c.qmu.Lock()
		c.closed = true
		pending := c.queue
		c.queue = nil
		c.qmu.Unlock()

		close(c.done)

		for _, req := range pending {
			if req.reply != nil {
				req.reply <- result{err: ErrClosed}
			}
		}
	})
}
