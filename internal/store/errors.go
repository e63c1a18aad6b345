package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("timer not found")

// ErrStopInFlight is returned when a stop for the same timer is already
// waiting on the entry API.
var ErrStopInFlight = errors.New("stop already in progress for this timer")

// ErrAlreadyStopped is returned when stopping a timer that is already stopped.
var ErrAlreadyStopped = errors.New("timer is already stopped")

// NotFoundError reports an id that is not in the collection.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("timer not found: %s", e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousIDError reports an id prefix that matches more than one timer.
type AmbiguousIDError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousIDError) Error() string {
	return fmt.Sprintf("id prefix %q is ambiguous: matches %s", e.Prefix, strings.Join(e.Matches, ", "))
}
