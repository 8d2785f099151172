package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Paintersrp/nodian/internal/session"
)

// RootStatus holds the status line shown under the editor panes.
type RootStatus struct {
	mu   sync.RWMutex
	line string
}

func (r *RootStatus) Set(line string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.line = line
	r.mu.Unlock()
}

func (r *RootStatus) Value() string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.line
}

// UpdateStatus formats snap into the shared status line and returns it.
func (s *State) UpdateStatus(snap session.Snapshot) string {
	line := FormatStatus(snap)
	if s != nil && s.Status != nil {
		s.Status.Set(line)
	}
	return line
}

func FormatStatus(snap session.Snapshot) string {
	unsaved := 0
	for _, tab := range snap.Tabs {
		if tab.IsModified {
			unsaved++
		}
	}

	parts := []string{
		fmt.Sprintf("Notes: %d", len(snap.FileTree)),
		fmt.Sprintf("open %d", len(snap.Tabs)),
	}
	if unsaved > 0 {
		parts = append(parts, fmt.Sprintf("unsaved %d", unsaved))
	}
	if !snap.TakenAt.IsZero() {
		parts = append(parts, fmt.Sprintf("synced %s", formatSyncTime(snap.TakenAt)))
	}
	if snap.Err != nil {
		parts = append(parts, "error: "+snap.Err.Error())
	}

	return strings.Join(parts, " · ")
}

func formatSyncTime(t time.Time) string {
	return t.Local().Format("15:04")
}
