package timer

import "fmt"

// FormatDuration renders seconds as a compact duration token for submission,
// e.g. "45m", "2h", "1h30m". Seconds round half-up to whole minutes and the
// result is never shorter than "1m".
func FormatDuration(seconds int) string {
	totalMinutes := (seconds + 30) / 60
	if totalMinutes < 1 {
		totalMinutes = 1
	}

	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
}

// FormatEntry builds the entry text sent to the time-entry API:
// the duration token, one space, then the description.
func FormatEntry(seconds int, description string) string {
	return FormatDuration(seconds) + " " + description
}

// FormatDisplay renders seconds as a clock, MM:SS below an hour and H:MM:SS
// from an hour up. It truncates rather than rounds.
func FormatDisplay(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
