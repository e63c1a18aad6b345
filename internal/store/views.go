package store

import (
	"time"

	"github.com/zjrosen/tact/internal/timer"
)

// Snapshot is an immutable copy of the timer collection, newest first.
type Snapshot struct {
	Timers  []timer.Timer
	TakenAt time.Time
}

// Active returns running and paused timers.
func (s Snapshot) Active() []timer.Timer {
	return filter(s.Timers, func(t *timer.Timer) bool { return t.IsActive() })
}

// Running returns the running timer, if any.
func (s Snapshot) Running() (timer.Timer, bool) {
	for i := range s.Timers {
		if s.Timers[i].IsRunning() {
			return s.Timers[i], true
		}
	}
	return timer.Timer{}, false
}

// RunningCount returns how many timers are running.
func (s Snapshot) RunningCount() int {
	return len(filter(s.Timers, func(t *timer.Timer) bool { return t.IsRunning() }))
}

// CompletedToday returns stopped timers whose StoppedAt is on or after the
// start of the day containing now.
func (s Snapshot) CompletedToday(now time.Time) []timer.Timer {
	midnight := StartOfDay(now)
	return filter(s.Timers, func(t *timer.Timer) bool {
		return t.IsStopped() && !t.StoppedBefore(midnight)
	})
}

// StartOfDay returns local midnight of the day containing now.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func filter(ts []timer.Timer, keep func(*timer.Timer) bool) []timer.Timer {
	out := make([]timer.Timer, 0, len(ts))
	for i := range ts {
		if keep(&ts[i]) {
			out = append(out, ts[i])
		}
	}
	return out
}
