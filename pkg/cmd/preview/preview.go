package preview

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/markdown"
	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/state"
	pcmd "github.com/Paintersrp/nodian/pkg/cmd"
)

func NewCmdPreview(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "preview [path]",
		Aliases: []string{"p", "render"},
		Short:   "Render a note as HTML or for the terminal.",
		Long: heredoc.Doc(`
			Render a note. By default the note is styled for the terminal; use
			--html to print the HTML preview the editor shows instead.
		`),
		Example: heredoc.Doc(`
			nodian preview readme.md
			nodian preview readme.md --html > readme.html
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}

	cmd.Flags().Bool("html", false, "Print HTML instead of terminal output")
	cmd.Flags().IntP("width", "w", 0, "Wrap width for terminal output (defaults to preview_width)")
	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	path, err := pcmd.ResolveNotePath(s, args[0])
	if err != nil {
		return err
	}

	snap, err := pcmd.Apply(cmd, s, session.OpenFile{Path: path})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if html, _ := cmd.Flags().GetBool("html"); html {
		fmt.Fprint(out, snap.PreviewHTML)
		return nil
	}

	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width = s.Config.PreviewWidth
	}

	rendered, err := markdown.Terminal(snap.EditorContent, width)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	fmt.Fprint(out, rendered)
	return nil
}
