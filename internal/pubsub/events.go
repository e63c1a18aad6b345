// Package pubsub fans out timer snapshots and debug log lines to the views
// that render them.
package pubsub

import "time"

// EventType says what caused a publish.
type EventType string

// The store publishes the first four with a full snapshot as payload; the
// logger publishes LoggedEvent with one formatted line.
const (
	CreatedEvent  EventType = "created" // timer started
	UpdatedEvent  EventType = "updated" // paused, resumed or stopped
	DeletedEvent  EventType = "deleted"
	ReloadedEvent EventType = "reloaded" // re-read from storage
	LoggedEvent   EventType = "logged"
)

// Event is one publish. The broker stamps Timestamp.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}
