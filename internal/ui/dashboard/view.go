package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/tact/internal/timer"
	"github.com/zjrosen/tact/internal/ui/overlay"
	"github.com/zjrosen/tact/internal/ui/styles"
)

const (
	defaultDescWidth = 30
	minDescWidth     = 12
	maxDescWidth     = 60
)

func rowZoneID(i int) string {
	return fmt.Sprintf("timer-row-%d", i)
}

// View renders the dashboard.
func (m Model) View() string {
	view := styles.PanelStyle.Render(m.renderList())

	if m.inputMode {
		view = overlay.Place(overlay.Config{
			Width:    max(m.width, lipgloss.Width(view)),
			Height:   max(m.height, lipgloss.Height(view)),
			Position: overlay.Center,
		}, m.renderInput(), view)
	}

	view = m.logs.Overlay(view)
	if m.width > 0 && m.height > 0 {
		view = m.toaster.Overlay(view, m.width, m.height)
	} else if m.toaster.Visible() {
		view += "\n" + m.toaster.View()
	}
	return zone.Scan(view)
}

func (m Model) renderList() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Timers"))
	b.WriteString("\n\n")

	active := m.snapshot.Active()
	completed := m.snapshot.CompletedToday(m.now)
	descWidth := m.descWidth()
	index := 0

	if len(active) > 0 {
		b.WriteString(styles.SectionHeaderStyle.Render("Active Timers"))
		b.WriteString("\n")
		for _, t := range active {
			b.WriteString(zone.Mark(rowZoneID(index), m.renderActiveRow(t, index, descWidth)))
			b.WriteString("\n")
			index++
		}
		b.WriteString("\n")
	}

	if len(completed) > 0 {
		b.WriteString(styles.SectionHeaderStyle.Render("Completed Today"))
		b.WriteString("\n")
		for _, t := range completed {
			b.WriteString(zone.Mark(rowZoneID(index), m.renderCompletedRow(t, index, descWidth)))
			b.WriteString("\n")
			index++
		}
		b.WriteString("\n")
	}

	if index == 0 {
		b.WriteString(styles.MutedStyle.Render("No timers yet. Press [n] to start one."))
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderActiveRow(t timer.Timer, index, descWidth int) string {
	badge := styles.StateBadge(t.State)
	if m.stopping[t.ID] {
		badge = styles.TimerPausedStyle.Render("[Submitting…]")
	}
	clock := styles.ElapsedStyle.Render(fmt.Sprintf("%8s", timer.FormatDisplay(t.TotalElapsedSeconds(m.now))))
	return m.prefix(index) + m.itemText(index, fit(t.Description, descWidth)) + " " + clock + " " + badge
}

func (m Model) renderCompletedRow(t timer.Timer, index, descWidth int) string {
	duration := styles.ElapsedStyle.Render(fmt.Sprintf("%8s", timer.FormatDuration(t.AccumulatedSeconds)))
	var at string
	if t.StoppedAt != nil {
		at = styles.MutedStyle.Render(t.StoppedAt.In(m.now.Location()).Format("15:04"))
	}
	return m.prefix(index) + m.itemText(index, fit(t.Description, descWidth)) + " " + duration + " " + at
}

func (m Model) prefix(index int) string {
	if index == m.cursor {
		return styles.SelectionIndicatorStyle.Render(">") + " "
	}
	return "  "
}

func (m Model) itemText(index int, s string) string {
	if index == m.cursor {
		return styles.SelectedItemStyle.Render(s)
	}
	return styles.ItemStyle.Render(s)
}

func (m Model) renderInput() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("New timer"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.inputKeys.ShortHelp()))
	return styles.InputBoxStyle.Render(b.String())
}

func (m Model) descWidth() int {
	if m.width == 0 {
		return defaultDescWidth
	}
	// prefix, clock, badge, padding and borders
	return max(min(m.width-32, maxDescWidth), minDescWidth)
}

// fit truncates s to width cells without splitting grapheme clusters,
// ending in "…" when cut, then pads it to exactly width cells.
func fit(s string, width int) string {
	if uniseg.StringWidth(s) > width {
		var b strings.Builder
		used := 0
		g := uniseg.NewGraphemes(s)
		for g.Next() {
			w := g.Width()
			if used+w > width-1 {
				break
			}
			b.WriteString(g.Str())
			used += w
		}
		b.WriteString("…")
		s = b.String()
	}
	if w := uniseg.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}
