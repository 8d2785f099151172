package clip

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/state"
)

var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll
)

const previewLength = 60

func NewCmdClip(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clip",
		Aliases: []string{"c", "clipboard"},
		Short:   "Keep a history of clipboard snippets.",
		Long: heredoc.Doc(`
			Save clipboard snippets to the local database and copy them back later.
			Saving the same snippet twice in a row keeps a single entry.
		`),
	}

	cmd.AddCommand(newCmdAdd(s), newCmdList(s), newCmdCopy(s))
	return cmd
}

func newCmdAdd(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "add [text]",
		Aliases: []string{"save"},
		Short:   "Save text, or the current clipboard, to the history.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			if len(args) == 1 {
				content = args[0]
			} else {
				value, err := readClipboard()
				if err != nil {
					return fmt.Errorf("read clipboard: %w", err)
				}
				content = value
			}

			d, err := s.Database()
			if err != nil {
				return err
			}
			c, err := d.AddClip(cmd.Context(), content)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved clip #%d\n", c.ID)
			return nil
		},
	}
}

func newCmdList(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent clips, newest first.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			d, err := s.Database()
			if err != nil {
				return err
			}
			clips, err := d.RecentClips(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(clips) == 0 {
				fmt.Fprintln(out, "No clips saved")
				return nil
			}
			for i, c := range clips {
				fmt.Fprintf(out, "%d. %s  %s\n", i+1, c.CreatedAt.Local().Format("2006-01-02 15:04"), summarize(c.Content))
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of clips to show")
	return cmd
}

func newCmdCopy(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "copy [n]",
		Short: "Copy the nth most recent clip back to the clipboard.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed < 1 {
					return fmt.Errorf("invalid clip number %q", args[0])
				}
				n = parsed
			}

			d, err := s.Database()
			if err != nil {
				return err
			}
			clips, err := d.RecentClips(cmd.Context(), n)
			if err != nil {
				return err
			}
			if len(clips) < n {
				return fmt.Errorf("only %d clips saved", len(clips))
			}

			if err := writeClipboard(clips[n-1].Content); err != nil {
				return fmt.Errorf("write clipboard: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied clip %d\n", n)
			return nil
		},
	}
}

func summarize(content string) string {
	line := strings.Join(strings.Fields(content), " ")
	runes := []rune(line)
	if len(runes) <= previewLength {
		return line
	}
	return string(runes[:previewLength-1]) + "…"
}
