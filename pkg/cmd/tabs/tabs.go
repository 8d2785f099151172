package tabs

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/state"
	pcmd "github.com/Paintersrp/nodian/pkg/cmd"
)

func NewCmdTabs(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "Show or manage the remembered open tabs.",
		Long: heredoc.Doc(`
			Show the tabs restored from the last session. Restored tabs are always
			clean; unsaved markers only appear inside the interactive editor.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := s.Controller.Snapshot()
			out := cmd.OutOrStdout()
			if len(snap.Tabs) == 0 {
				fmt.Fprintln(out, "No open tabs")
				return nil
			}
			for _, tab := range snap.Tabs {
				fmt.Fprintln(out, tab.DisplayPath)
			}
			return nil
		},
	}

	cmd.AddCommand(newCmdClose(s), newCmdClear(s))
	return cmd
}

func newCmdClose(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "close [path]",
		Aliases: []string{"rm"},
		Short:   "Close a tab.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pcmd.ResolveNotePath(s, args[0])
			if err != nil {
				return err
			}
			if _, err := pcmd.Apply(cmd, s, session.CloseFile{Path: path}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed %s\n", args[0])
			return nil
		},
	}
}

func newCmdClear(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Close every tab and forget the saved session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := s.Controller.Snapshot()
			intents := make([]session.Intent, 0, len(snap.Tabs))
			for _, tab := range snap.Tabs {
				intents = append(intents, session.CloseFile{Path: tab.Path})
			}
			if _, err := pcmd.Apply(cmd, s, intents...); err != nil {
				return err
			}
			if err := s.Sidecar.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d tabs\n", len(intents))
			return nil
		},
	}
}
