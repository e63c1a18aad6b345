// Package dashboard implements the interactive timer dashboard.
//
// The dashboard lists active timers followed by the ones completed today and
// drives the store from single-key actions. It never mutates timers on its
// own: the one-second tick only refreshes the elapsed clocks, and every state
// change goes through the store, whose snapshots flow back in over pubsub.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/tact/internal/keys"
	"github.com/zjrosen/tact/internal/log"
	"github.com/zjrosen/tact/internal/pubsub"
	"github.com/zjrosen/tact/internal/store"
	"github.com/zjrosen/tact/internal/timer"
	"github.com/zjrosen/tact/internal/ui/logoverlay"
	"github.com/zjrosen/tact/internal/ui/toaster"
)

// DefaultTickInterval is how often elapsed clocks are redrawn.
const DefaultTickInterval = time.Second

// descriptionLimit caps the new-timer input.
const descriptionLimit = 200

// TimerStore is the part of the store the dashboard drives.
type TimerStore interface {
	StartNewTimer(description string) timer.Timer
	PauseTimer(id string) (timer.Timer, error)
	ResumeTimer(id string) (timer.Timer, error)
	StopTimer(ctx context.Context, id string) (store.Stopped, error)
	RemoveTimer(id string) error
	Reload()
	Snapshot() store.Snapshot
	Broker() *pubsub.Broker[store.Snapshot]
	Now() time.Time
}

// tickMsg redraws elapsed clocks.
type tickMsg time.Time

// reloadMsg reports that the storage changed on disk.
type reloadMsg struct{}

// StopResultMsg carries the outcome of an asynchronous stop.
// Entry is the submitted text and is empty on failure.
type StopResultMsg struct {
	ID    string
	Timer timer.Timer
	Entry string
	Err   error
}

// Model holds the dashboard state.
type Model struct {
	ctx   context.Context
	store TimerStore

	keys      keys.KeyMap
	inputKeys keys.InputKeyMap
	help      help.Model
	input     textinput.Model
	inputMode bool

	snapshot   store.Snapshot
	now        time.Time
	cursor     int
	selectedID string
	stopping   map[string]bool

	toaster      toaster.Model
	toastFor     time.Duration
	logs         logoverlay.Model
	snapshots    *pubsub.ContinuousListener[store.Snapshot]
	logListener  *log.LogListener
	reload       <-chan struct{}
	tickInterval time.Duration

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithTickInterval overrides how often elapsed clocks are redrawn.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// WithReloadSignal makes the dashboard reload the store whenever ch fires.
func WithReloadSignal(ch <-chan struct{}) Option {
	return func(m *Model) { m.reload = ch }
}

// WithLogListener feeds log lines into the log overlay.
func WithLogListener(l *log.LogListener) Option {
	return func(m *Model) { m.logListener = l }
}

// WithToastDuration overrides how long toasts stay up.
func WithToastDuration(d time.Duration) Option {
	return func(m *Model) { m.toastFor = d }
}

// New builds a dashboard for s. Subscriptions live until ctx is cancelled.
func New(ctx context.Context, s TimerStore, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "What are you working on?"
	ti.CharLimit = descriptionLimit
	ti.Width = 40

	m := Model{
		ctx:          ctx,
		store:        s,
		keys:         keys.DefaultKeyMap(),
		inputKeys:    keys.DefaultInputKeyMap(),
		help:         help.New(),
		input:        ti,
		snapshot:     s.Snapshot(),
		now:          s.Now(),
		stopping:     make(map[string]bool),
		toaster:      toaster.New(),
		toastFor:     toaster.DefaultDuration,
		logs:         logoverlay.New(logoverlay.DefaultLimit),
		snapshots:    pubsub.NewSnapshotListener(ctx, s.Broker()),
		tickInterval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if zone.DefaultManager == nil {
		zone.NewGlobal()
	}
	m.syncCursor()
	return m
}

// Init starts the tick and the subscriptions.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.snapshots.Listen(), m.tick()}
	if m.reload != nil {
		cmds = append(cmds, m.waitReload())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = inputWidth(msg.Width)
		m.logs = m.logs.SetSize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		m.now = m.store.Now()
		return m, m.tick()

	case pubsub.Event[store.Snapshot]:
		// Queued events can lag behind; read the store's current state.
		m.refresh()
		return m, m.snapshots.Listen()

	case log.LogEvent:
		m.logs = m.logs.Append(msg.Payload)
		return m, m.logListener.Listen()

	case reloadMsg:
		log.Debug(log.CatUI, "Storage changed on disk, reloading")
		m.store.Reload()
		m.refresh()
		return m, m.waitReload()

	case StopResultMsg:
		return m.handleStopResult(msg)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.KeyMsg:
		if m.logs.Visible() {
			var cmd tea.Cmd
			m.logs, cmd = m.logs.Update(msg)
			return m, cmd
		}
		if m.inputMode {
			return m.handleInputKey(msg)
		}
		return m.handleKeyMsg(msg)
	}

	if m.inputMode {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.inputKeys.Cancel):
		m.closeInput()
		return m, nil

	case key.Matches(msg, m.inputKeys.Submit):
		desc, err := timer.ValidateDescription(m.input.Value())
		if err != nil {
			return m, nil
		}
		t := m.store.StartNewTimer(desc)
		m.closeInput()
		m.selectedID = t.ID
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.logs = m.logs.Toggle()
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.inputMode = true
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Down):
		if len(rows) > 0 {
			m.moveTo((m.cursor + 1) % len(rows))
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(rows) > 0 {
			m.moveTo((m.cursor - 1 + len(rows)) % len(rows))
		}
		return m, nil
	}

	t, ok := m.Selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Pause):
		if !t.IsRunning() {
			return m, nil
		}
		if _, err := m.store.PauseTimer(t.ID); err != nil {
			return m.showError("Pause failed", err)
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Resume):
		if !t.IsPaused() {
			return m, nil
		}
		if _, err := m.store.ResumeTimer(t.ID); err != nil {
			return m.showError("Resume failed", err)
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if t.IsStopped() || m.stopping[t.ID] {
			return m, nil
		}
		m.stopping[t.ID] = true
		return m, m.stopCmd(t.ID)

	case key.Matches(msg, m.keys.Delete):
		if err := m.store.RemoveTimer(t.ID); err != nil {
			return m.showError("Delete failed", err)
		}
		m.selectedID = ""
		m.refresh()
		return m, nil
	}

	return m, nil
}

// handleMouseMsg selects the row under a left click.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	for i := range m.rows() {
		if z := zone.Get(rowZoneID(i)); z != nil && z.InBounds(msg) {
			m.moveTo(i)
			return m, nil
		}
	}
	return m, nil
}

// stopCmd submits the selected timer off the update loop. The rows keep
// their current state until StopResultMsg arrives.
func (m Model) stopCmd(id string) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		res, err := s.StopTimer(ctx, id)
		return StopResultMsg{ID: id, Timer: res.Timer, Entry: res.Entry, Err: err}
	}
}

func (m Model) handleStopResult(msg StopResultMsg) (tea.Model, tea.Cmd) {
	delete(m.stopping, msg.ID)
	m.refresh()

	switch {
	case msg.Err == nil:
		return m.showToast("Logged "+msg.Entry, toaster.StyleSuccess)
	case errors.Is(msg.Err, store.ErrStopInFlight), errors.Is(msg.Err, store.ErrAlreadyStopped):
		return m.showToast(msg.Err.Error(), toaster.StyleWarn)
	default:
		log.ErrorErr(log.CatUI, "Stop failed", msg.Err, "id", msg.ID)
		return m.showError("Stop failed, timer kept for retry", msg.Err)
	}
}

func (m Model) showError(prefix string, err error) (tea.Model, tea.Cmd) {
	return m.showToast(fmt.Sprintf("%s: %v", prefix, err), toaster.StyleError)
}

func (m Model) showToast(text string, style toaster.Style) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(text, style, m.toastFor)
	return m, cmd
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitReload() tea.Cmd {
	ctx, ch := m.ctx, m.reload
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return reloadMsg{}
		}
	}
}

func (m *Model) closeInput() {
	m.inputMode = false
	m.input.Blur()
	m.input.Reset()
}

// refresh pulls a fresh snapshot and keeps the cursor on the same timer
// when it is still listed.
func (m *Model) refresh() {
	m.snapshot = m.store.Snapshot()
	m.now = m.store.Now()
	m.syncCursor()
}

func (m *Model) syncCursor() {
	rows := m.rows()
	if m.selectedID != "" {
		for i := range rows {
			if rows[i].ID == m.selectedID {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(rows) > 0 {
		m.selectedID = rows[m.cursor].ID
	} else {
		m.selectedID = ""
	}
}

func (m *Model) moveTo(i int) {
	rows := m.rows()
	if i < 0 || i >= len(rows) {
		return
	}
	m.cursor = i
	m.selectedID = rows[i].ID
}

// rows lists active timers followed by those completed today.
func (m Model) rows() []timer.Timer {
	active := m.snapshot.Active()
	return append(active, m.snapshot.CompletedToday(m.now)...)
}

// Selected returns the timer under the cursor.
func (m Model) Selected() (timer.Timer, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return timer.Timer{}, false
	}
	return rows[m.cursor], true
}

// Cursor returns the cursor index into active-then-completed rows.
func (m Model) Cursor() int {
	return m.cursor
}

// InputMode reports whether the new-timer input is open.
func (m Model) InputMode() bool {
	return m.inputMode
}

// Stopping reports whether a stop for id is waiting on the entry API.
func (m Model) Stopping(id string) bool {
	return m.stopping[id]
}

// Toast returns the toaster, for inspection.
func (m Model) Toast() toaster.Model {
	return m.toaster
}

func inputWidth(width int) int {
	return max(min(width-12, 60), 20)
}
