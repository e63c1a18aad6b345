package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/tact/internal/timer"
)

// DescriptionWidth is the column width for descriptions in list output.
const DescriptionWidth = 40

// ShortIDLen is how many id characters list output shows.
const ShortIDLen = 8

// Truncate shortens s to at most width terminal cells, ending in "…" when cut.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// pad right-pads s to width terminal cells.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// WriteList prints one line per timer: short id, state, elapsed clock and
// description. It writes nothing for an empty slice.
func WriteList(w io.Writer, timers []timer.Timer, now time.Time) error {
	for _, t := range timers {
		id := t.ID
		if len(id) > ShortIDLen {
			id = id[:ShortIDLen]
		}
		line := fmt.Sprintf("%s  %s  %8s  %s",
			pad(id, ShortIDLen),
			pad(stateLabel(t.State), 7),
			Elapsed(t, now),
			Truncate(t.Description, DescriptionWidth),
		)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func stateLabel(s timer.State) string {
	switch s {
	case timer.StateRunning:
		return "running"
	case timer.StatePaused:
		return "paused"
	case timer.StateStopped:
		return "stopped"
	default:
		return string(s)
	}
}
