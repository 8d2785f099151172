package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/viper"

	"github.com/Paintersrp/nodian/internal/config"
	"github.com/Paintersrp/nodian/internal/db"
	"github.com/Paintersrp/nodian/internal/document"
	"github.com/Paintersrp/nodian/internal/logging"
	"github.com/Paintersrp/nodian/internal/markdown"
	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/tabs"
)

type State struct {
	Config     *config.Config
	Home       string
	Root       string
	Logger     *slog.Logger
	Renderer   *markdown.Renderer
	Controller *session.Controller
	Sidecar    *tabs.Sidecar
	Status     *RootStatus

	cancel    context.CancelFunc
	stopped   chan struct{}
	logCloser io.Closer

	mu      sync.Mutex
	db      *db.DB
	watcher *RootWatcher
}

// NewState loads the config from the user's home directory, layers the values
// bound in v over it and starts the session controller.
func NewState(v *viper.Viper) (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}
	return New(home, v)
}

func New(home string, v *viper.Viper) (*State, error) {
	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(v); err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.LogPath(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	store, err := document.New(cfg.RootPath())
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to open notes root: %w", err)
	}

	sidecar := tabs.NewSidecar(cfg.SessionPath())
	renderer := markdown.NewRenderer()

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithRefreshInterval(cfg.RefreshInterval),
	}
	if cfg.Persist() {
		docs, err := sidecar.Load()
		if err != nil {
			logger.Warn("discarding unreadable session", "path", sidecar.Path(), "err", err)
		}
		store.Restore(docs)
		opts = append(opts, session.WithPersister(sidecar))
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &State{
		Config:     cfg,
		Home:       home,
		Root:       store.Root(),
		Logger:     logger,
		Renderer:   renderer,
		Controller: session.New(store, renderer, opts...),
		Sidecar:    sidecar,
		Status:     &RootStatus{},
		cancel:     cancel,
		stopped:    make(chan struct{}),
		logCloser:  logCloser,
	}

	go func() {
		defer close(s.stopped)
		s.Controller.Run(ctx)
	}()

	logger.Debug("state ready", "root", s.Root, "session", sidecar.Path())
	return s, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Database opens the auxiliary store on first use.
func (s *State) Database() (*db.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	d, err := db.Open(s.Config.DatabasePath())
	if err != nil {
		return nil, err
	}
	s.db = d
	return d, nil
}

// Watch starts a root watcher that asks the controller to refresh whenever a
// markdown file changes on disk. Calling it again returns the same watcher.
func (s *State) Watch() (*RootWatcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher, nil
	}

	w, err := NewRootWatcher(s.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to create root watcher: %w", err)
	}

	w.OnChange(func(rel string) {
		s.Logger.Debug("root changed", "path", rel)
		if err := s.Controller.Dispatch(session.Refresh{}); err != nil && !errors.Is(err, session.ErrClosed) {
			s.Logger.Warn("dispatch refresh", "err", err)
		}
	})
	w.OnError(func(err error) {
		s.Logger.Warn("root watcher", "err", err)
	})

	go w.Run()
	s.watcher = w
	return w, nil
}

// Close stops the watcher and the controller, then releases the database and
// log file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error

	s.mu.Lock()
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.watcher = nil
	}
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		<-s.stopped
		s.cancel = nil
	}

	s.mu.Lock()
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
		s.db = nil
	}
	s.mu.Unlock()

	if s.logCloser != nil {
		if err := s.logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
		s.logCloser = nil
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
