package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/tact/internal/report"
)

// reportWidth is the glamour word-wrap width for the today report.
const reportWidth = 80

func newListCmd(o *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active timers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withSession(func(s *session) error {
				timers := s.store.ActiveTimers()
				if all {
					timers = append(timers, s.store.CompletedToday()...)
				}
				if len(timers) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No timers. Start one with `tact start <description>`.")
					return nil
				}
				return report.WriteList(cmd.OutOrStdout(), timers, s.store.Now())
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include timers completed today")
	return cmd
}

func newTodayCmd(o *rootOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Summarize timers completed today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withSession(func(s *session) error {
				md := report.TodayMarkdown(s.store.CompletedToday())
				if raw {
					_, err := fmt.Fprint(cmd.OutOrStdout(), md)
					return err
				}

				r, err := report.NewRenderer(reportWidth, o.cfg.UI.MarkdownStyle)
				if err != nil {
					return fmt.Errorf("creating report renderer: %w", err)
				}
				out, err := r.Render(md)
				if err != nil {
					return fmt.Errorf("rendering report: %w", err)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	return cmd
}
