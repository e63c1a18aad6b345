// Package logoverlay shows recent debug log lines on top of the dashboard.
// Lines arrive from the log broker; the overlay keeps the newest ones in a
// bounded buffer so it works without re-reading the log file.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/tact/internal/log"
	"github.com/zjrosen/tact/internal/ui/overlay"
	"github.com/zjrosen/tact/internal/ui/styles"
)

const (
	// DefaultLimit is how many lines the overlay keeps.
	DefaultLimit = 500

	viewportMaxHeight = 20
	viewportMinHeight = 3
	boxMaxWidth       = 140
	boxMinWidth       = 30
)

// Model is the log overlay component state.
type Model struct {
	visible  bool
	lines    []string
	limit    int
	minLevel log.Level
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden overlay that keeps at most limit lines.
func New(limit int) Model {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Model{limit: limit, minLevel: log.LevelDebug}
}

// Append records a log line, dropping the oldest once the buffer is full.
func (m Model) Append(line string) Model {
	line = strings.TrimSuffix(line, "\n")
	m.lines = append(m.lines, line)
	if over := len(m.lines) - m.limit; over > 0 {
		m.lines = append([]string(nil), m.lines[over:]...)
	}
	if m.visible {
		m.refresh()
		m.viewport.GotoBottom()
	}
	return m
}

// Lines returns the buffered lines, oldest first.
func (m Model) Lines() []string {
	return m.lines
}

// Toggle flips visibility.
func (m Model) Toggle() Model {
	m.visible = !m.visible
	if m.visible {
		m.refresh()
		m.viewport.GotoBottom()
	}
	return m
}

// Visible returns whether the overlay is showing.
func (m Model) Visible() bool {
	return m.visible
}

// MinLevel returns the current level filter.
func (m Model) MinLevel() log.Level {
	return m.minLevel
}

// SetSize updates the overlay's knowledge of the terminal size.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.refresh()
	return m
}

// Update handles keys while visible: level filters, scrolling, and esc to close.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "c":
		m.lines = nil
		m.refresh()
	case "d":
		m.setLevel(log.LevelDebug)
	case "i":
		m.setLevel(log.LevelInfo)
	case "w":
		m.setLevel(log.LevelWarn)
	case "e":
		m.setLevel(log.LevelError)
	case "j", "down":
		m.viewport.ScrollDown(1)
	case "k", "up":
		m.viewport.ScrollUp(1)
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+x", "esc", "q":
		m.visible = false
	}
	return m, nil
}

func (m *Model) setLevel(level log.Level) {
	m.minLevel = level
	m.refresh()
}

// View renders the boxed log viewer.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	boxWidth := m.boxWidth()
	divider := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", boxWidth))

	var b strings.Builder
	b.WriteString(styles.TitleStyle.PaddingLeft(1).Render("Logs"))
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.filterHint())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(b.String())
}

// Overlay renders the log viewer centered on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

func (m Model) filtered() []string {
	var out []string
	for _, line := range m.lines {
		if levelOf(line) >= m.minLevel {
			out = append(out, line)
		}
	}
	return out
}

func (m *Model) refresh() {
	if m.width == 0 || m.height == 0 {
		return
	}

	// header, footer and borders take six rows
	height := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	width := m.boxWidth() - 2

	m.viewport = viewport.New(width, height)
	m.viewport.SetContent(m.content(width))
}

func (m Model) content(width int) string {
	lines := m.filtered()
	if len(lines) == 0 {
		return styles.MutedStyle.Italic(true).Render("No logs to display")
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, "…")
		}
		out[i] = levelStyle(levelOf(line)).Render(line)
	}
	return strings.Join(out, "\n")
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m Model) filterHint() string {
	levels := []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	}

	hints := []string{styles.MutedStyle.Render("[c] Clear")}
	for _, l := range levels {
		if l.level == m.minLevel {
			hints = append(hints, styles.SelectedItemStyle.Render(l.label))
		} else {
			hints = append(hints, styles.MutedStyle.Render(l.label))
		}
	}
	return strings.Join(hints, "  ")
}

// levelOf reads the "[LEVEL]" token written by the log package. Lines
// without one count as errors so they are never filtered out.
func levelOf(line string) log.Level {
	for _, level := range []log.Level{log.LevelDebug, log.LevelInfo, log.LevelWarn, log.LevelError} {
		if strings.Contains(line, "["+level.String()+"]") {
			return level
		}
	}
	return log.LevelError
}

func levelStyle(level log.Level) lipgloss.Style {
	switch level {
	case log.LevelError:
		return lipgloss.NewStyle().Foreground(styles.StatusErrorColor)
	case log.LevelWarn:
		return lipgloss.NewStyle().Foreground(styles.StatusWarningColor)
	case log.LevelInfo:
		return lipgloss.NewStyle().Foreground(styles.ToastBorderInfoColor)
	default:
		return styles.MutedStyle
	}
}
