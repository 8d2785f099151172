package edit

import (
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/state"
	pcmd "github.com/Paintersrp/nodian/pkg/cmd"
)

func NewCmdEdit(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit [path] [content]",
		Aliases: []string{"e", "write"},
		Short:   "Replace a note's content and save it.",
		Long: heredoc.Doc(`
			Replace the content of an existing note and save it. The content comes
			from the second argument, or from stdin when it is omitted.
		`),
		Example: heredoc.Doc(`
			nodian edit todo.md "- [ ] ship it"
			echo "# Draft" | nodian edit drafts/post.md
		`),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pcmd.ResolveNotePath(s, args[0])
			if err != nil {
				return err
			}

			var content string
			if len(args) == 2 {
				content = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read content from stdin: %w", err)
				}
				content = string(data)
			}

			snap, err := pcmd.Apply(
				cmd,
				s,
				session.OpenFile{Path: path},
				session.EditContent{Text: content},
				session.SaveFile{},
			)
			if err != nil {
				return err
			}

			tab, _ := snap.Active()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", tab.DisplayPath, len(content))
			return nil
		},
	}

	return cmd
}
