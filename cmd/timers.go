package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/tact/internal/store"
	"github.com/zjrosen/tact/internal/timer"
)

var errNoRunningTimer = errors.New("no timer is running")

// withSession opens storage for the duration of fn.
func (o *rootOptions) withSession(fn func(*session) error) error {
	s, err := o.openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// resolveTarget picks the timer named by args[0] (an id or unique prefix),
// or the running timer when no id is given.
func resolveTarget(st *store.Store, args []string) (timer.Timer, error) {
	if len(args) == 0 {
		t, ok := st.RunningTimer()
		if !ok {
			return timer.Timer{}, errNoRunningTimer
		}
		return t, nil
	}
	return st.Resolve(args[0])
}

func describe(t timer.Timer) string {
	return fmt.Sprintf("%s %q", store.ShortID(t.ID), t.Description)
}

func newStartCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <description...>",
		Short: "Start a new timer, pausing the running one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := timer.ValidateDescription(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return o.withSession(func(s *session) error {
				prev, wasRunning := s.store.RunningTimer()
				t := s.store.StartNewTimer(desc)

				out := cmd.OutOrStdout()
				if wasRunning {
					fmt.Fprintf(out, "Paused %s\n", describe(prev))
				}
				fmt.Fprintf(out, "Started %s\n", describe(t))
				return nil
			})
		},
	}
}

func newPauseCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pause [id]",
		Short: "Pause a timer (default: the running one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(func(s *session) error {
				t, err := resolveTarget(s.store, args)
				if err != nil {
					return err
				}
				if !t.IsRunning() {
					return fmt.Errorf("timer %s is %s, not running", store.ShortID(t.ID), t.State)
				}
				t, err = s.store.PauseTimer(t.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Paused %s at %s\n", describe(t), timer.FormatDisplay(t.AccumulatedSeconds))
				return nil
			})
		},
	}
}

func newResumeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id>",
		Short: "Resume a paused timer, pausing the running one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(func(s *session) error {
				t, err := s.store.Resolve(args[0])
				if err != nil {
					return err
				}
				if !t.IsPaused() {
					return fmt.Errorf("timer %s is %s, not paused", store.ShortID(t.ID), t.State)
				}

				prev, wasRunning := s.store.RunningTimer()
				t, err = s.store.ResumeTimer(t.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if wasRunning {
					fmt.Fprintf(out, "Paused %s\n", describe(prev))
				}
				fmt.Fprintf(out, "Resumed %s\n", describe(t))
				return nil
			})
		},
	}
}

func newStopCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [id]",
		Short: "Stop a timer and submit its entry (default: the running one)",
		Long: `Stop submits "<duration> <description>" to the time-entry API. The timer
is only marked stopped once the API accepts the entry; on failure it is left
as it was so the stop can be retried.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(func(s *session) error {
				t, err := resolveTarget(s.store, args)
				if err != nil {
					return err
				}
				stopped, err := s.store.StopTimer(cmd.Context(), t.ID)
				if err != nil {
					if errors.Is(err, store.ErrAlreadyStopped) {
						return err
					}
					return fmt.Errorf("%w\ntimer %s kept; run `tact stop %s` to retry", err, store.ShortID(t.ID), store.ShortID(t.ID))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %q\n", stopped.Entry)
				return nil
			})
		},
	}
}

func newRemoveCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a timer without submitting it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(func(s *session) error {
				t, err := s.store.Resolve(args[0])
				if err != nil {
					return err
				}
				if err := s.store.RemoveTimer(t.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", describe(t))
				return nil
			})
		},
	}
}
