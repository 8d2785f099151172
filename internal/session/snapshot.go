package session

import "time"

// Tab is one entry of the open-file strip.
type Tab struct {
	DisplayPath string
	Path        string
	IsModified  bool
	IsActive    bool
}

// Snapshot is a consistent view of the session for display. Intent and Err
// describe the intent that produced it; both are nil for snapshots taken
// outside the intent queue. Subscribers must treat the slices as read-only.
type Snapshot struct {
	Intent        Intent
	Err           error
	FileTree      []string
	Tabs          []Tab
	ActivePath    string
	EditorContent string
	PreviewHTML   string
	TakenAt       time.Time
}

// Active returns the active tab, if any.
func (s Snapshot) Active() (Tab, bool) {
	for _, tab := range s.Tabs {
		if tab.IsActive {
			return tab, true
		}
	}
	return Tab{}, false
}
