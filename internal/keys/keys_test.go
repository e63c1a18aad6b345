package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Assignments(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"Up", km.Up, []string{"k", "up"}},
		{"Down", km.Down, []string{"j", "down"}},
		{"New", km.New, []string{"n"}},
		{"Pause", km.Pause, []string{"p"}},
		{"Resume", km.Resume, []string{"r"}},
		{"Stop", km.Stop, []string{"s"}},
		{"Delete", km.Delete, []string{"d"}},
		{"Logs", km.Logs, []string{"ctrl+x"}},
		{"Help", km.Help, []string{"?"}},
		{"Quit", km.Quit, []string{"q", "esc", "ctrl+c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
			require.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestDefaultKeyMap_NoDuplicateActionKeys(t *testing.T) {
	km := DefaultKeyMap()
	seen := map[string]string{}
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				prev, dup := seen[k]
				require.False(t, dup, "key %q bound to both %q and %q", k, prev, b.Help().Desc)
				seen[k] = b.Help().Desc
			}
		}
	}
}

func TestShortHelp_CoversTimerActions(t *testing.T) {
	km := DefaultKeyMap()
	short := km.ShortHelp()
	require.Len(t, short, 7)
	require.Equal(t, "new timer", short[0].Help().Desc)
}

func TestDefaultInputKeyMap(t *testing.T) {
	km := DefaultInputKeyMap()
	require.Equal(t, []string{"enter"}, km.Submit.Keys())
	require.Equal(t, []string{"esc"}, km.Cancel.Keys())
	require.Len(t, km.FullHelp(), 1)
}
