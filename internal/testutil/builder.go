package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tact/internal/kv"
	"github.com/zjrosen/tact/internal/timer"
)

// Builder accumulates timers and writes them to a key-value store in the
// persisted format.
type Builder struct {
	t      *testing.T
	now    time.Time
	timers []timer.Timer
}

// NewBuilder creates a builder whose defaults are relative to now.
func NewBuilder(t *testing.T, now time.Time) *Builder {
	t.Helper()
	return &Builder{t: t, now: now}
}

// TimerOption configures a timer during builder setup.
type TimerOption func(*timer.Timer)

// WithTimer adds a timer. It defaults to running since one minute before now.
func (b *Builder) WithTimer(id string, opts ...TimerOption) *Builder {
	started := b.now.Add(-time.Minute)
	tm := timer.Timer{
		ID:          id,
		Description: id,
		State:       timer.StateRunning,
		StartedAt:   &started,
	}
	for _, opt := range opts {
		opt(&tm)
	}
	b.timers = append(b.timers, tm)
	return b
}

// Timers returns the accumulated timers.
func (b *Builder) Timers() []timer.Timer {
	return b.timers
}

// JSON encodes the accumulated timers the way the store persists them.
func (b *Builder) JSON() []byte {
	b.t.Helper()
	data, err := json.Marshal(b.timers)
	require.NoError(b.t, err)
	return data
}

// Build writes the timers to store under key.
func (b *Builder) Build(store kv.Store, key string) {
	b.t.Helper()
	require.NoError(b.t, store.Put(key, b.JSON()))
}

// Description sets the timer description.
func Description(desc string) TimerOption {
	return func(t *timer.Timer) { t.Description = desc }
}

// RunningSince makes the timer running from at with acc banked seconds.
func RunningSince(at time.Time, acc int) TimerOption {
	return func(t *timer.Timer) {
		t.State = timer.StateRunning
		t.StartedAt = &at
		t.AccumulatedSeconds = acc
		t.StoppedAt = nil
	}
}

// Paused makes the timer paused with acc banked seconds.
func Paused(acc int) TimerOption {
	return func(t *timer.Timer) {
		t.State = timer.StatePaused
		t.StartedAt = nil
		t.AccumulatedSeconds = acc
		t.StoppedAt = nil
	}
}

// StoppedAt makes the timer stopped at the given time with acc seconds.
func StoppedAt(at time.Time, acc int) TimerOption {
	return func(t *timer.Timer) {
		t.State = timer.StateStopped
		t.StartedAt = nil
		t.AccumulatedSeconds = acc
		t.StoppedAt = &at
	}
}
