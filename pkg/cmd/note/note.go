package note

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/state"
)

func NewCmdNote(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Quick notes kept in the local database rather than as files.",
	}

	cmd.AddCommand(newCmdAdd(s), newCmdList(s))
	return cmd
}

func newCmdAdd(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "add [title] [content]",
		Short:   "Store a quick note. Content is read from stdin when omitted.",
		Example: `nodian note add groceries "milk, eggs"`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := ""
			if len(args) == 2 {
				content = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read content from stdin: %w", err)
				}
				content = string(data)
			}

			d, err := s.Database()
			if err != nil {
				return err
			}
			n, err := d.AddNote(cmd.Context(), args[0], content)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved note #%d %q\n", n.ID, n.Title)
			return nil
		},
	}
}

func newCmdList(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List quick notes, most recent first.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			full, _ := cmd.Flags().GetBool("full")

			d, err := s.Database()
			if err != nil {
				return err
			}
			notes, err := d.ListNotes(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(notes) == 0 {
				fmt.Fprintln(out, "No notes")
				return nil
			}
			for _, n := range notes {
				fmt.Fprintf(out, "#%d %s (%s)\n", n.ID, n.Title, n.UpdatedAt.Local().Format("2006-01-02"))
				if full && strings.TrimSpace(n.Content) != "" {
					fmt.Fprintln(out, indent(n.Content))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolP("full", "f", false, "Print note content as well")
	return cmd
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}
