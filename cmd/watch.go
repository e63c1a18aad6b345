package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/tact/internal/log"
	"github.com/zjrosen/tact/internal/ui/dashboard"
	"github.com/zjrosen/tact/internal/watcher"
)

func newWatchCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Aliases: []string{"ui", "dashboard"},
		Short:   "Open the interactive timer dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Query the terminal background before Bubble Tea owns stdin, so
			// the OSC 11 reply cannot land in the input field.
			_ = lipgloss.HasDarkBackground()
			zone.NewGlobal()

			return o.withSession(func(s *session) error {
				ctx := cmd.Context()
				opts := []dashboard.Option{dashboard.WithTickInterval(o.cfg.UI.RefreshInterval)}

				w, err := watcher.New(watcher.DefaultConfig(s.watched...))
				if err == nil {
					var changes <-chan struct{}
					changes, err = w.Start()
					if err == nil {
						defer func() { _ = w.Stop() }()
						opts = append(opts, dashboard.WithReloadSignal(changes))
					}
				}
				if err != nil {
					log.ErrorErr(log.CatWatcher, "Storage watcher unavailable, external changes will not show", err)
				}

				if l := log.NewListener(ctx); l != nil {
					opts = append(opts, dashboard.WithLogListener(l))
				}

				p := tea.NewProgram(
					dashboard.New(ctx, s.store, opts...),
					tea.WithAltScreen(),
					tea.WithMouseCellMotion(),
					tea.WithContext(ctx),
				)
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("running dashboard: %w", err)
				}
				return nil
			})
		},
	}
}
