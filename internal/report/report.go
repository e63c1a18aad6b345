// Package report renders timers for the terminal: the markdown "today"
// summary and the fixed-width list used by `tact list`.
package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/tact/internal/timer"
)

// TodayMarkdown summarizes timers completed today as a markdown table.
// Timers are listed oldest stop first.
func TodayMarkdown(completed []timer.Timer) string {
	var b strings.Builder
	b.WriteString("# Completed Today\n\n")

	if len(completed) == 0 {
		b.WriteString("_Nothing completed yet._\n")
		return b.String()
	}

	ordered := make([]timer.Timer, len(completed))
	copy(ordered, completed)
	sortByStopped(ordered)

	b.WriteString("| Description | Duration | Stopped |\n")
	b.WriteString("|---|---:|---:|\n")
	total := 0
	for _, t := range ordered {
		total += t.AccumulatedSeconds
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			escapeCell(t.Description),
			timer.FormatDuration(t.AccumulatedSeconds),
			stoppedClock(t),
		)
	}

	entries := "entries"
	if len(ordered) == 1 {
		entries = "entry"
	}
	fmt.Fprintf(&b, "\n**Total:** %s across %d %s\n", timer.FormatDuration(total), len(ordered), entries)
	return b.String()
}

func stoppedClock(t timer.Timer) string {
	if t.StoppedAt == nil {
		return "-"
	}
	return t.StoppedAt.Local().Format("15:04")
}

func sortByStopped(ts []timer.Timer) {
	slices.SortStableFunc(ts, func(a, b timer.Timer) int {
		if a.StoppedAt == nil || b.StoppedAt == nil {
			return 0
		}
		return a.StoppedAt.Compare(*b.StoppedAt)
	})
}

// escapeCell keeps a description inside one markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// Elapsed is the display clock for a timer at now.
func Elapsed(t timer.Timer, now time.Time) string {
	return timer.FormatDisplay(t.TotalElapsedSeconds(now))
}
