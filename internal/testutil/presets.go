package testutil

import "time"

// WithStandardTestData adds one timer in each interesting state.
//
//	run-1       running, 2m banked, resumed 30s ago
//	pause-1     paused, 45m banked
//	done-today  stopped an hour ago (or at midnight if earlier)
//	done-old    stopped yesterday
func (b *Builder) WithStandardTestData() *Builder {
	y, m, d := b.now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, b.now.Location())
	doneToday := b.now.Add(-time.Hour)
	if doneToday.Before(midnight) {
		doneToday = midnight
	}

	return b.
		WithTimer("run-1", Description("write report"), RunningSince(b.now.Add(-30*time.Second), 120)).
		WithTimer("pause-1", Description("code review"), Paused(45*60)).
		WithTimer("done-today", Description("standup"), StoppedAt(doneToday, 15*60)).
		WithTimer("done-old", Description("planning"), StoppedAt(midnight.Add(-2*time.Hour), 3600))
}
