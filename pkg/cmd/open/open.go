package open

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/state"
	pcmd "github.com/Paintersrp/nodian/pkg/cmd"
)

func NewCmdOpen(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "open [path]",
		Aliases: []string{"o", "cat"},
		Short:   "Open a note and print its content.",
		Long: heredoc.Doc(`
			Open a note, making it the active tab, and print its content. Opening a
			note that is already open reloads it from disk.
		`),
		Example: "nodian open projects/roadmap.md",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pcmd.ResolveNotePath(s, args[0])
			if err != nil {
				return err
			}

			snap, err := pcmd.Apply(cmd, s, session.OpenFile{Path: path})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), snap.EditorContent)
			return nil
		},
	}

	return cmd
}
