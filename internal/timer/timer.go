// Package timer holds the timer entity, its state machine, and the duration
// formatting used for display and for entry submission.
//
// The package is pure: it never reads the wall clock. Every transition takes
// the current time as an argument so callers (the store, tests) decide what
// "now" is.
package timer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// State is the lifecycle state of a timer.
type State string

const (
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid returns true if s is a recognized state.
func (s State) IsValid() bool {
	switch s {
	case StateRunning, StatePaused, StateStopped:
		return true
	default:
		return false
	}
}

// ErrEmptyDescription is returned by ValidateDescription for blank input.
var ErrEmptyDescription = errors.New("description must not be empty")

// ValidateDescription trims s and rejects it if nothing is left.
func ValidateDescription(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", ErrEmptyDescription
	}
	return trimmed, nil
}

// Timer is a single unit of trackable work.
//
// StartedAt marks the beginning of the current running interval and is set
// only while running. AccumulatedSeconds holds every earlier interval.
// StoppedAt is set once, on entering StateStopped.
type Timer struct {
	ID                 string     `json:"id"`
	Description        string     `json:"description"`
	State              State      `json:"state"`
	StartedAt          *time.Time `json:"startedAt,omitempty"`
	AccumulatedSeconds int        `json:"accumulatedSeconds"`
	StoppedAt          *time.Time `json:"stoppedAt,omitempty"`
}

// New creates a running timer whose first interval starts at now.
func New(id, description string, now time.Time) *Timer {
	return &Timer{
		ID:          id,
		Description: description,
		State:       StateRunning,
		StartedAt:   &now,
	}
}

// TotalElapsedSeconds returns banked seconds plus the current interval.
func (t *Timer) TotalElapsedSeconds(now time.Time) int {
	total := t.AccumulatedSeconds
	if t.State == StateRunning && t.StartedAt != nil {
		total += elapsedSeconds(*t.StartedAt, now)
	}
	return total
}

// Pause banks the current interval. No-op unless running.
func (t *Timer) Pause(now time.Time) {
	if t.State != StateRunning || t.StartedAt == nil {
		return
	}
	t.AccumulatedSeconds += elapsedSeconds(*t.StartedAt, now)
	t.StartedAt = nil
	t.State = StatePaused
}

// Resume starts a new interval at now. No-op unless paused.
// Keeping a single running timer is the caller's job.
func (t *Timer) Resume(now time.Time) {
	if t.State != StatePaused {
		return
	}
	t.StartedAt = &now
	t.State = StateRunning
}

// Stop banks any running interval and marks the timer stopped.
// No-op when already stopped, so StoppedAt is only ever set once.
func (t *Timer) Stop(now time.Time) {
	if t.State == StateStopped {
		return
	}
	if t.State == StateRunning && t.StartedAt != nil {
		t.AccumulatedSeconds += elapsedSeconds(*t.StartedAt, now)
	}
	t.StartedAt = nil
	t.State = StateStopped
	t.StoppedAt = &now
}

// IsRunning returns true if the timer is running.
func (t *Timer) IsRunning() bool { return t.State == StateRunning }

// IsPaused returns true if the timer is paused.
func (t *Timer) IsPaused() bool { return t.State == StatePaused }

// IsStopped returns true if the timer is stopped.
func (t *Timer) IsStopped() bool { return t.State == StateStopped }

// IsActive returns true for running or paused timers.
func (t *Timer) IsActive() bool { return t.IsRunning() || t.IsPaused() }

// StoppedBefore reports whether t is stopped and its StoppedAt precedes cutoff.
// A stopped timer with no StoppedAt counts as stopped before any cutoff.
func (t *Timer) StoppedBefore(cutoff time.Time) bool {
	if !t.IsStopped() {
		return false
	}
	return t.StoppedAt == nil || t.StoppedAt.Before(cutoff)
}

// Clone returns a deep copy that shares no pointers with t.
func (t *Timer) Clone() Timer {
	c := *t
	if t.StartedAt != nil {
		started := *t.StartedAt
		c.StartedAt = &started
	}
	if t.StoppedAt != nil {
		stopped := *t.StoppedAt
		c.StoppedAt = &stopped
	}
	return c
}

// Validate checks the state/timestamp invariants.
func (t *Timer) Validate() error {
	if t.ID == "" {
		return errors.New("timer has no id")
	}
	if !t.State.IsValid() {
		return fmt.Errorf("timer %s: invalid state %q", t.ID, t.State)
	}
	if (t.StartedAt != nil) != (t.State == StateRunning) {
		return fmt.Errorf("timer %s: startedAt must be set iff running", t.ID)
	}
	if (t.StoppedAt != nil) != (t.State == StateStopped) {
		return fmt.Errorf("timer %s: stoppedAt must be set iff stopped", t.ID)
	}
	if t.AccumulatedSeconds < 0 {
		return fmt.Errorf("timer %s: negative accumulated seconds", t.ID)
	}
	return nil
}

// Repair coerces a decoded record back onto the invariants and reports
// whether anything changed. A running timer without a start is treated as
// paused; stray timestamps are cleared.
func (t *Timer) Repair() bool {
	changed := false
	if t.AccumulatedSeconds < 0 {
		t.AccumulatedSeconds = 0
		changed = true
	}
	switch t.State {
	case StateRunning:
		if t.StartedAt == nil {
			t.State = StatePaused
			changed = true
		}
		if t.StoppedAt != nil {
			t.StoppedAt = nil
			changed = true
		}
	case StatePaused:
		if t.StartedAt != nil || t.StoppedAt != nil {
			t.StartedAt, t.StoppedAt = nil, nil
			changed = true
		}
	case StateStopped:
		if t.StartedAt != nil {
			t.StartedAt = nil
			changed = true
		}
	default:
		t.State = StatePaused
		t.StartedAt, t.StoppedAt = nil, nil
		changed = true
	}
	return changed
}

// elapsedSeconds floors now-since to whole seconds, never negative.
func elapsedSeconds(since, now time.Time) int {
	d := now.Sub(since)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
