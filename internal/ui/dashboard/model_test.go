package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tact/internal/kv"
	"github.com/zjrosen/tact/internal/store"
	"github.com/zjrosen/tact/internal/testutil"
	"github.com/zjrosen/tact/internal/timer"
	"github.com/zjrosen/tact/internal/ui/toaster"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeSubmitter struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (f *fakeSubmitter) CreateEntry(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, text)
	return f.err
}

func (f *fakeSubmitter) Entries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.entries...)
}

type harness struct {
	store *store.Store
	kv    *kv.Memory
	sub   *fakeSubmitter
	clock *testutil.FakeClock
}

func newHarness(t *testing.T, seed *testutil.Builder) *harness {
	t.Helper()
	h := &harness{
		kv:    kv.NewMemory(),
		sub:   &fakeSubmitter{},
		clock: testutil.NewFakeClock(t0),
	}
	if seed != nil {
		seed.Build(h.kv, store.DefaultKey)
	}
	n := 0
	h.store = store.New(h.kv, h.sub,
		store.WithClock(h.clock),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("timer-%02d", n)
		}),
	)
	t.Cleanup(h.store.Close)
	return h
}

func (h *harness) model(t *testing.T) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, h.store, WithToastDuration(time.Hour))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func plain(m Model) string {
	return ansi.Strip(m.View())
}

func TestView_EmptyState(t *testing.T) {
	m := newHarness(t, nil).model(t)

	view := plain(m)
	assert.Contains(t, view, "Timers")
	assert.Contains(t, view, "No timers yet. Press [n] to start one.")
	assert.NotContains(t, view, "Active Timers")
}

func TestNewTimer_ViaInput(t *testing.T) {
	h := newHarness(t, nil)
	m := h.model(t)

	m, _ = press(t, m, runes("n"))
	require.True(t, m.InputMode())
	assert.Contains(t, plain(m), "New timer")

	m, _ = press(t, m, runes("write docs"), tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.InputMode())
	running, ok := h.store.RunningTimer()
	require.True(t, ok)
	assert.Equal(t, "write docs", running.Description)

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, running.ID, sel.ID)

	view := plain(m)
	assert.Contains(t, view, "Active Timers")
	assert.Contains(t, view, "write docs")
	assert.Contains(t, view, "[Running]")
}

func TestNewTimer_BlankDescriptionIgnored(t *testing.T) {
	h := newHarness(t, nil)
	m, _ := press(t, h.model(t), runes("n"), runes("   "), tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.InputMode())
	assert.Zero(t, h.store.TimerCount())
}

func TestNewTimer_EscCancels(t *testing.T) {
	h := newHarness(t, nil)
	m, _ := press(t, h.model(t), runes("n"), runes("abc"), tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.InputMode())
	assert.Zero(t, h.store.TimerCount())

	// reopening starts from an empty input
	m, _ = press(t, m, runes("n"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.InputMode())
}

func TestCursor_WrapsAcrossSections(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).WithStandardTestData())
	m := h.model(t)

	// run-1, pause-1, done-today
	require.Equal(t, 0, m.Cursor())
	m, _ = press(t, m, runes("j"), runes("j"))
	sel, _ := m.Selected()
	assert.Equal(t, "done-today", sel.ID)

	m, _ = press(t, m, runes("j"))
	assert.Equal(t, 0, m.Cursor())

	m, _ = press(t, m, runes("k"))
	assert.Equal(t, 2, m.Cursor())
}

func TestPauseAndResume(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).WithStandardTestData())
	m := h.model(t)

	m, _ = press(t, m, runes("p"))
	_, running := h.store.RunningTimer()
	assert.False(t, running)

	// resume on a paused row pauses nothing else since nothing runs
	m, _ = press(t, m, runes("j"), runes("r"))
	rt, ok := h.store.RunningTimer()
	require.True(t, ok)
	assert.Equal(t, "pause-1", rt.ID)

	sel, _ := m.Selected()
	assert.Equal(t, "pause-1", sel.ID, "cursor follows the timer it was on")
}

func TestPause_IgnoredOnPausedRow(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).WithStandardTestData())
	before := h.kv.Snapshot()[store.DefaultKey]

	_, cmd := press(t, h.model(t), runes("j"), runes("p"))

	assert.Nil(t, cmd)
	assert.Equal(t, before, h.kv.Snapshot()[store.DefaultKey])
}

func TestStop_SuccessShowsToast(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).
		WithTimer("a", testutil.Description("write docs"), testutil.RunningSince(t0, 0)))
	m := h.model(t)

	m, cmd := press(t, m, runes("s"))
	require.NotNil(t, cmd)
	assert.True(t, m.Stopping("a"))
	assert.Contains(t, plain(m), "[Submitting…]")

	// the row is untouched until the outcome arrives
	rt, ok := h.store.RunningTimer()
	require.True(t, ok)
	assert.Equal(t, "a", rt.ID)

	m, _ = press(t, m, cmd())

	assert.False(t, m.Stopping("a"))
	assert.Equal(t, []string{"1m write docs"}, h.sub.Entries())
	assert.True(t, m.Toast().Visible())
	assert.Equal(t, toaster.StyleSuccess, m.Toast().Style())
	assert.Equal(t, "Logged 1m write docs", m.Toast().Message())

	view := plain(m)
	assert.Contains(t, view, "Completed Today")
	assert.NotContains(t, view, "Active Timers")
}

func TestStop_FailureKeepsTimer(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).
		WithTimer("a", testutil.Description("x"), testutil.RunningSince(t0.Add(-2*time.Minute), 0)))
	h.sub.err = errors.New("connection refused")
	m := h.model(t)

	m, cmd := press(t, m, runes("s"))
	m, _ = press(t, m, cmd())

	assert.Equal(t, toaster.StyleError, m.Toast().Style())
	assert.Contains(t, m.Toast().Message(), "connection refused")

	got, err := h.store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, timer.StateRunning, got.State)
	assert.Contains(t, plain(m), "[Running]")
}

func TestStop_SecondPressWhileInFlightIgnored(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).WithTimer("a"))
	m := h.model(t)

	m, first := press(t, m, runes("s"))
	require.NotNil(t, first)
	_, second := press(t, m, runes("s"))
	assert.Nil(t, second)
}

func TestStop_IgnoredOnCompletedRow(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).
		WithTimer("done", testutil.StoppedAt(t0.Add(-time.Hour), 600)))
	_, cmd := press(t, h.model(t), runes("s"))
	assert.Nil(t, cmd)
	assert.Empty(t, h.sub.Entries())
}

func TestStopResult_InFlightIsWarning(t *testing.T) {
	m := newHarness(t, nil).model(t)
	m, _ = press(t, m, StopResultMsg{ID: "a", Err: store.ErrStopInFlight})
	assert.Equal(t, toaster.StyleWarn, m.Toast().Style())
}

func TestStopResult_ToastShowsSubmittedEntry(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).
		WithTimer("a", testutil.Description("x"), testutil.StoppedAt(t0, 91)))
	m := h.model(t)

	m, _ = press(t, m, StopResultMsg{ID: "a", Entry: "1m x"})

	assert.Equal(t, "Logged 1m x", m.Toast().Message())
	assert.Equal(t, toaster.StyleSuccess, m.Toast().Style())
}

func TestDelete_MovesCursorUp(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).WithStandardTestData())
	m := h.model(t)

	m, _ = press(t, m, runes("k"), runes("d"))

	assert.Equal(t, 2, h.store.TimerCount())
	_, err := h.store.Get("done-today")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 1, m.Cursor())
}

func TestTick_RefreshesClockWithoutMutation(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).
		WithTimer("a", testutil.Description("x"), testutil.RunningSince(t0, 0)))
	m := h.model(t)
	before := h.kv.Snapshot()[store.DefaultKey]
	assert.Contains(t, plain(m), "00:00")

	h.clock.Advance(75 * time.Second)
	m, cmd := press(t, m, tickMsg(h.clock.Now()))

	require.NotNil(t, cmd)
	assert.Contains(t, plain(m), "01:15")
	assert.Equal(t, before, h.kv.Snapshot()[store.DefaultKey])
}

func TestReload_PicksUpExternalChanges(t *testing.T) {
	h := newHarness(t, nil)
	ch := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := New(ctx, h.store, WithReloadSignal(ch))

	testutil.NewBuilder(t, t0).
		WithTimer("ext", testutil.Description("from another process"), testutil.Paused(60)).
		Build(h.kv, store.DefaultKey)

	ch <- struct{}{}
	msg := m.waitReload()()
	require.IsType(t, reloadMsg{}, msg)

	m, cmd := press(t, m, msg)
	require.NotNil(t, cmd)
	assert.Contains(t, plain(m), "from another process")
}

func TestWaitReload_StopsOnCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	m := New(ctx, h.store, WithReloadSignal(make(chan struct{})))
	cancel()
	assert.Nil(t, m.waitReload()())
}

func TestSnapshotEvent_Refreshes(t *testing.T) {
	h := newHarness(t, nil)
	m := h.model(t)

	h.store.StartNewTimer("started elsewhere")
	ev := (<-h.store.Subscribe(context.Background()))

	m, cmd := press(t, m, ev)
	require.NotNil(t, cmd)
	assert.Contains(t, plain(m), "started elsewhere")
}

func TestLogsToggle(t *testing.T) {
	m := newHarness(t, nil).model(t)
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 100, Height: 30}, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Contains(t, plain(m), "Logs")

	// keys go to the overlay while it is open
	m, _ = press(t, m, runes("n"))
	assert.False(t, m.InputMode())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, plain(m), "No logs to display")
}

func TestQuit(t *testing.T) {
	m := newHarness(t, nil).model(t)
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMouseClickSelectsRow(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder(t, t0).WithStandardTestData())
	m, _ := press(t, h.model(t), tea.WindowSizeMsg{Width: 80, Height: 24})
	_ = m.View()

	var z *zone.ZoneInfo
	require.Eventually(t, func() bool {
		z = zone.Get(rowZoneID(2))
		return z != nil && !z.IsZero()
	}, time.Second, 10*time.Millisecond)

	m, _ = press(t, m, tea.MouseMsg{
		X:      z.StartX + 2,
		Y:      z.StartY,
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionRelease,
	})
	assert.Equal(t, 2, m.Cursor())
}

func TestFit(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 8, "short   "},
		{"exactly8", 8, "exactly8"},
		{"much too long", 8, "much to…"},
		{"日本語のテキスト", 7, "日本語…"},
		{"👩‍💻👩‍💻👩‍💻👩‍💻", 5, "👩‍💻👩‍💻…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fit(tt.in, tt.width), "fit(%q, %d)", tt.in, tt.width)
	}
}
