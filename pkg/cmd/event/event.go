package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nodian/internal/db"
	"github.com/Paintersrp/nodian/internal/state"
)

const displayLayout = "Mon 2006-01-02 15:04"

// location is where dates without a zone are interpreted.
var location = time.Local

func NewCmdEvent(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"ev", "calendar"},
		Short:   "Add and list calendar events.",
		Long: heredoc.Doc(`
			A small calendar stored in the local database. Dates are accepted in
			most common formats, e.g. "2024-06-10 09:30", "06/10/2024 9:30 AM" or
			"June 10 2024".
		`),
	}

	cmd.AddCommand(newCmdAdd(s), newCmdList(s))
	return cmd
}

func newCmdAdd(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title] [start]",
		Short: "Add an event.",
		Example: heredoc.Doc(`
			nodian event add standup "2024-06-10 09:00" --end "2024-06-10 09:15"
			nodian event add "dentist" "June 12 2024 14:00" -d "bring forms"
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[1])
			if err != nil {
				return err
			}

			ev := db.Event{Title: args[0], Start: start}
			if raw, _ := cmd.Flags().GetString("end"); raw != "" {
				if ev.End, err = parseDate(raw); err != nil {
					return err
				}
			}
			ev.Description, _ = cmd.Flags().GetString("desc")

			d, err := s.Database()
			if err != nil {
				return err
			}
			saved, err := d.AddEvent(cmd.Context(), ev)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %q on %s\n", saved.Title, saved.Start.In(location).Format(displayLayout))
			return nil
		},
	}

	cmd.Flags().StringP("end", "e", "", "End date and time")
	cmd.Flags().StringP("desc", "d", "", "Description")
	return cmd
}

func newCmdList(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List upcoming events.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from := startOfDay(time.Now().In(location))
			if raw, _ := cmd.Flags().GetString("from"); raw != "" {
				parsed, err := parseDate(raw)
				if err != nil {
					return err
				}
				from = parsed
			}
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}

			d, err := s.Database()
			if err != nil {
				return err
			}
			events, err := d.EventsBetween(cmd.Context(), from, from.AddDate(0, 0, days))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events")
				return nil
			}
			for _, ev := range events {
				line := fmt.Sprintf("%s  %s", ev.Start.In(location).Format(displayLayout), ev.Title)
				if !ev.End.IsZero() {
					line += fmt.Sprintf(" (until %s)", ev.End.In(location).Format("15:04"))
				}
				if ev.Description != "" {
					line += " - " + ev.Description
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().String("from", "", "First day to list (defaults to today)")
	cmd.Flags().Int("days", 7, "Number of days to list")
	return cmd
}

func parseDate(raw string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(raw), location)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q: %w", raw, err)
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
