package new

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/state"
	pcmd "github.com/Paintersrp/nodian/pkg/cmd"
)

func NewCmdNew(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "new [path]",
		Aliases: []string{"n"},
		Short:   "Create a markdown file under the notes root.",
		Long: heredoc.Doc(`
			Create a markdown file under the notes root and add it to the open tabs.
			An existing file with the same name is truncated. Parent directories
			must already exist. The .md extension is added when missing.
		`),
		Example: heredoc.Doc(`
			nodian new ideas
			nodian new projects/roadmap.md --content "# Roadmap"
		`),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("error: No path given. Try again with 'nodian new [path]'")
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}

	cmd.Flags().StringP("content", "c", "", "Initial content written to the new file")
	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	name := strings.TrimSpace(args[0])
	if name == "" || strings.HasSuffix(name, "/") {
		return fmt.Errorf("invalid file name %q", args[0])
	}
	if !strings.HasSuffix(strings.ToLower(name), ".md") {
		name += ".md"
	}

	path, err := pcmd.ResolveNotePath(s, name)
	if err != nil {
		return err
	}

	intents := []session.Intent{session.CreateFile{Name: path}}
	if content, _ := cmd.Flags().GetString("content"); content != "" {
		intents = append(intents, session.EditContent{Text: content}, session.SaveFile{})
	}

	snap, err := pcmd.Apply(cmd, s, intents...)
	if err != nil {
		return err
	}

	tab, _ := snap.Active()
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", tab.DisplayPath)
	return nil
}
