package timer

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "1m"},
		{29, "1m"},
		{30, "1m"},
		{89, "1m"},
		{90, "2m"},
		{2700, "45m"},
		{3569, "59m"},
		{3599, "1h"}, // (3599+30)/60 rounds up to 60 minutes
		{3600, "1h"},
		{5400, "1h30m"},
		{5430, "1h31m"},
		{7200, "2h"},
		{36000 + 60, "10h1m"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%ds", tt.seconds), func(t *testing.T) {
			require.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{-5, "00:00"},
		{0, "00:00"},
		{29, "00:29"},
		{65, "01:05"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{5430, "1:30:30"},
		{36000 + 61, "10:01:01"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%ds", tt.seconds), func(t *testing.T) {
			require.Equal(t, tt.want, FormatDisplay(tt.seconds))
		})
	}
}

func TestFormatEntry(t *testing.T) {
	require.Equal(t, "1m write docs", FormatEntry(0, "write docs"))
	require.Equal(t, "1h30m wrote the report", FormatEntry(5400, "wrote the report"))
}

var durationPattern = regexp.MustCompile(`^(?:[1-9]\d*h(?:[1-9]\d*m)?|[1-9]\d*m)$`)

// TestFormatDuration_Properties checks the token shape for arbitrary inputs.
func TestFormatDuration_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.IntRange(0, 1_000_000).Draw(rt, "seconds")
		got := FormatDuration(s)

		require.Regexp(rt, durationPattern, got)

		rounded := (s + 30) / 60
		if rounded < 1 {
			require.Equal(rt, "1m", got, "floor applies when rounding yields zero minutes")
		} else {
			var h, m int
			switch {
			case rounded%60 == 0:
				_, err := fmt.Sscanf(got, "%dh", &h)
				require.NoError(rt, err)
			case rounded < 60:
				_, err := fmt.Sscanf(got, "%dm", &m)
				require.NoError(rt, err)
			default:
				_, err := fmt.Sscanf(got, "%dh%dm", &h, &m)
				require.NoError(rt, err)
			}
			require.Equal(rt, rounded, h*60+m)
		}
	})
}

func TestFormatEntry_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.IntRange(0, 500_000).Draw(rt, "seconds")
		d := rapid.String().Draw(rt, "description")
		require.Equal(rt, FormatDuration(s)+" "+d, FormatEntry(s, d))
	})
}

func TestFormatDisplay_Properties(t *testing.T) {
	clock := regexp.MustCompile(`^(?:\d{2}:[0-5]\d|[1-9]\d*:[0-5]\d:[0-5]\d)$`)
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.IntRange(0, 1_000_000).Draw(rt, "seconds")
		got := FormatDisplay(s)
		require.Regexp(rt, clock, got)

		var h, m, sec int
		if s >= 3600 {
			_, err := fmt.Sscanf(got, "%d:%d:%d", &h, &m, &sec)
			require.NoError(rt, err)
		} else {
			_, err := fmt.Sscanf(got, "%d:%d", &m, &sec)
			require.NoError(rt, err)
		}
		require.Equal(rt, s, h*3600+m*60+sec)
	})
}
