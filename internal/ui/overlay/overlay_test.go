package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(w, h int) string {
	row := strings.Repeat(".", w)
	rows := make([]string, h)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

func TestPlace_Center(t *testing.T) {
	result := Place(Config{Width: 5, Height: 3, Position: Center}, "XX\nXX", grid(5, 3))

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ".XX..", lines[0])
	assert.Equal(t, ".XX..", lines[1])
	assert.Equal(t, ".....", lines[2])
}

func TestPlace_Bottom_WithPadding(t *testing.T) {
	result := Place(Config{Width: 6, Height: 4, Position: Bottom, PadY: 1}, "ab", grid(6, 4))

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "..ab..", lines[2])
	assert.Equal(t, "......", lines[3])
}

func TestPlace_LargeForegroundClampsToOrigin(t *testing.T) {
	result := Place(Config{Width: 3, Height: 2, Position: Center}, "XXXXX", grid(3, 2))

	lines := strings.Split(result, "\n")
	assert.Equal(t, "XXXXX", lines[0])
}

func TestPlace_PadsShortBackground(t *testing.T) {
	result := Place(Config{Width: 4, Height: 3, Position: Bottom}, "X", "ab")

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ab", lines[0])
	assert.Contains(t, lines[2], "X")
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("abcdef")
	result := Place(Config{Width: 6, Height: 1, Position: Center}, "XX", styled)

	assert.Equal(t, "abXXef", ansi.Strip(result))
}
