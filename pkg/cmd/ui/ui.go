package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/state"
	"github.com/Paintersrp/nodian/internal/tui/editor"
)

func NewCmdUI(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ui",
		Aliases: []string{"u", "edit-ui"},
		Short:   "Open the interactive editor.",
		Long:    "Open the interactive editor with the file tree, open tabs and a live preview.",
		Example: "nodian ui --root ~/notes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(s)
		},
	}

	return cmd
}

func run(s *state.State) error {
	m := editor.New(s.Controller, s.Config.PreviewWidth)
	p := tea.NewProgram(m, tea.WithAltScreen())

	s.Controller.OnSnapshot(func(snap session.Snapshot) {
		s.UpdateStatus(snap)
		p.Send(editor.SnapshotMsg{Snapshot: snap})
	})

	if _, err := s.Watch(); err != nil {
		s.Logger.Warn("file watcher disabled", "err", err)
	}

	if err := s.Controller.Dispatch(session.Refresh{}); err != nil {
		return err
	}

	_, err := p.Run()
	return err
}
