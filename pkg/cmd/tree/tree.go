package tree

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/state"
)

func NewCmdTree(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tree",
		Aliases: []string{"t", "ls"},
		Short:   "List markdown files under the notes root.",
		Long:    "List every markdown file under the notes root, relative to the root. Hidden directories are skipped.",
		Example: "nodian tree",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := s.Controller.Snapshot()
			out := cmd.OutOrStdout()
			if len(snap.FileTree) == 0 {
				fmt.Fprintf(out, "No markdown files in %s\n", s.Root)
				return nil
			}
			for _, rel := range snap.FileTree {
				fmt.Fprintln(out, rel)
			}
			return nil
		},
	}

	return cmd
}
