// Package store owns the timer collection.
//
// The Store keeps at most one timer running, persists the whole collection to
// a key-value store after every mutation, and runs the stop protocol: format
// the entry, submit it, and only mark the timer stopped once the entry API has
// accepted it. A failed submission leaves the timer exactly as it was so the
// user can retry without losing tracked time.
//
// Persistence is best effort. Encode, decode and write failures are logged and
// never returned; the in-memory collection is authoritative for the process.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/tact/internal/inflight"
	"github.com/zjrosen/tact/internal/kv"
	"github.com/zjrosen/tact/internal/log"
	"github.com/zjrosen/tact/internal/pubsub"
	"github.com/zjrosen/tact/internal/timer"
	"github.com/zjrosen/tact/internal/tracing"
)

// DefaultKey is the key the timer collection is stored under.
const DefaultKey = "timers"

// Submitter sends a formatted entry to the time-entry API.
type Submitter interface {
	CreateEntry(ctx context.Context, text string) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Store is the single owner of the timer collection.
type Store struct {
	mu     sync.RWMutex
	timers []*timer.Timer

	kv        kv.Store
	key       string
	submitter Submitter
	clock     Clock
	newID     func() string
	broker    *pubsub.Broker[Snapshot]
	guard     *inflight.Guard
	tracer    trace.Tracer
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithIDGenerator overrides timer id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithGuard overrides the in-flight stop guard.
func WithGuard(g *inflight.Guard) Option {
	return func(s *Store) { s.guard = g }
}

// WithTracer sets the tracer used for stop spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Store) { s.tracer = t }
}

// New creates a Store and immediately loads the persisted collection.
func New(storage kv.Store, submitter Submitter, opts ...Option) *Store {
	s := &Store{
		timers:    make([]*timer.Timer, 0),
		kv:        storage,
		key:       DefaultKey,
		submitter: submitter,
		clock:     systemClock{},
		newID:     uuid.NewString,
		broker:    pubsub.NewBroker[Snapshot](),
		tracer:    noop.NewTracerProvider().Tracer("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.guard == nil {
		s.guard = inflight.New("stop", inflight.DefaultTTL, inflight.DefaultCleanupInterval)
	}

	s.Load()
	return s
}

// Subscribe streams a Snapshot after every change, starting with the
// current one.
func (s *Store) Subscribe(ctx context.Context) <-chan pubsub.Event[Snapshot] {
	return s.broker.SubscribeWithLast(ctx)
}

// Broker exposes the snapshot broker for Bubble Tea listeners.
func (s *Store) Broker() *pubsub.Broker[Snapshot] {
	return s.broker
}

// Close stops snapshot delivery. The key-value store is owned by the caller.
func (s *Store) Close() {
	s.broker.Close()
}

// StartNewTimer pauses whatever is running and prepends a new running timer.
func (s *Store) StartNewTimer(description string) timer.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.pauseRunningLocked(now)

	t := timer.New(s.newID(), description, now)
	s.timers = append([]*timer.Timer{t}, s.timers...)

	log.Info(log.CatStore, "Started timer", "id", t.ID, "description", description)
	s.commitLocked(pubsub.CreatedEvent)
	return t.Clone()
}

// PauseTimer pauses the timer with the given id.
func (s *Store) PauseTimer(id string) (timer.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findLocked(id)
	if t == nil {
		return timer.Timer{}, &NotFoundError{ID: id}
	}
	t.Pause(s.clock.Now())

	log.Info(log.CatStore, "Paused timer", "id", id, "accumulated", t.AccumulatedSeconds)
	s.commitLocked(pubsub.UpdatedEvent)
	return t.Clone(), nil
}

// ResumeTimer pauses whatever is running, then resumes the given timer if it
// is paused. The running timer is paused even when id is unknown or names a
// timer that is not paused.
func (s *Store) ResumeTimer(id string) (timer.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.pauseRunningLocked(now)

	t := s.findLocked(id)
	if t == nil {
		s.commitLocked(pubsub.UpdatedEvent)
		return timer.Timer{}, &NotFoundError{ID: id}
	}
	if t.IsPaused() {
		t.Resume(now)
		log.Info(log.CatStore, "Resumed timer", "id", id)
	}

	s.commitLocked(pubsub.UpdatedEvent)
	return t.Clone(), nil
}

// PauseRunningTimer pauses every running timer.
func (s *Store) PauseRunningTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pauseRunningLocked(s.clock.Now())
	s.commitLocked(pubsub.UpdatedEvent)
}

// Stopped is the result of StopTimer: the timer after the call and, when the
// submission succeeded, the exact entry text the API accepted.
type Stopped struct {
	timer.Timer
	Entry string
}

// StopTimer submits the timer's entry and, once the API accepts it, marks the
// timer stopped. On any submission error the timer is left untouched, nothing
// is persisted, and the error is returned for the caller to report.
//
// StopTimer blocks for the HTTP round trip. A concurrent StopTimer for the
// same id fails with ErrStopInFlight without submitting.
func (s *Store) StopTimer(ctx context.Context, id string) (_ Stopped, err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanStopTimer,
		trace.WithAttributes(attribute.String(tracing.AttrTimerID, id)),
	)
	defer func() {
		outcome := tracing.OutcomeSubmitted
		if err != nil {
			outcome = tracing.OutcomeFailed
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyStopped) || errors.Is(err, ErrStopInFlight) {
				outcome = tracing.OutcomeRejected
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String(tracing.AttrOutcome, outcome))
		span.End()
	}()

	s.mu.Lock()
	t := s.findLocked(id)
	if t == nil {
		s.mu.Unlock()
		return Stopped{}, &NotFoundError{ID: id}
	}
	before := t.Clone()
	if t.IsStopped() {
		s.mu.Unlock()
		return Stopped{Timer: before}, ErrAlreadyStopped
	}
	if !s.guard.TryAcquire(id) {
		s.mu.Unlock()
		return Stopped{Timer: before}, ErrStopInFlight
	}
	defer s.guard.Release(id)

	entry := timer.FormatEntry(t.TotalElapsedSeconds(s.clock.Now()), t.Description)
	s.mu.Unlock()

	span.SetAttributes(attribute.String(tracing.AttrEntryText, entry))
	log.Info(log.CatStore, "Submitting timer", "id", id, "entry", entry)

	if err := s.submitter.CreateEntry(ctx, entry); err != nil {
		log.ErrorErr(log.CatStore, "Stop failed, timer left unchanged", err, "id", id)
		return Stopped{Timer: before}, fmt.Errorf("submitting entry for timer %s: %w", shortID(id), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	t = s.findLocked(id)
	if t == nil {
		// Removed while the submission was in flight. The entry exists
		// upstream, so report success with a detached stopped copy.
		log.Warn(log.CatStore, "Timer removed during submission", "id", id)
		before.Stop(now)
		return Stopped{Timer: before, Entry: entry}, nil
	}
	t.Stop(now)

	log.Info(log.CatStore, "Stopped timer", "id", id, "seconds", t.AccumulatedSeconds)
	s.commitLocked(pubsub.UpdatedEvent)
	return Stopped{Timer: t.Clone(), Entry: entry}, nil
}

// RemoveTimer deletes the timer regardless of its state.
func (s *Store) RemoveTimer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.timers {
		if t.ID == id {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			log.Info(log.CatStore, "Removed timer", "id", id)
			s.commitLocked(pubsub.DeletedEvent)
			return nil
		}
	}
	return &NotFoundError{ID: id}
}

// Load replaces the collection with the persisted one, dropping timers
// stopped before today, and persists the cleaned result if cleanup changed it. A missing record
// yields an empty collection; an undecodable one is logged and discarded.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
}

// Reload re-reads persisted state, e.g. after another process changed it.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
}

// Save persists the collection.
func (s *Store) Save() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.saveLocked()
}

func (s *Store) loadLocked() {
	s.timers = make([]*timer.Timer, 0)
	defer func() { s.broker.Publish(pubsub.ReloadedEvent, s.snapshotLocked()) }()

	data, err := s.kv.Get(s.key)
	if errors.Is(err, kv.ErrNotFound) {
		log.Debug(log.CatStore, "No persisted timers", "key", s.key)
		return
	}
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to read timers", err, "key", s.key)
		return
	}

	var loaded []*timer.Timer
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.ErrorErr(log.CatStore, "Failed to decode timers, starting empty", err, "key", s.key)
		return
	}

	midnight := StartOfDay(s.clock.Now())
	running := false
	evicted := 0
	changed := false
	for _, t := range loaded {
		if t == nil || t.ID == "" {
			changed = true
			continue
		}
		if t.Repair() {
			log.Warn(log.CatStore, "Repaired inconsistent timer", "id", t.ID)
			changed = true
		}
		if t.StoppedBefore(midnight) {
			evicted++
			continue
		}
		// Keep the newest running timer; a second one can only come from a
		// hand-edited or corrupted record.
		if t.IsRunning() {
			if running {
				t.Pause(s.clock.Now())
				log.Warn(log.CatStore, "Paused extra running timer on load", "id", t.ID)
				changed = true
			}
			running = true
		}
		s.timers = append(s.timers, t)
	}

	log.Info(log.CatStore, "Loaded timers", "count", len(s.timers), "evicted", evicted)
	// Only write back when cleanup changed something, so a watcher on the
	// storage file does not see our own reload as a new change.
	if changed || evicted > 0 {
		s.saveLocked()
	}
}

func (s *Store) saveLocked() {
	data, err := json.Marshal(s.timers)
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to encode timers", err)
		return
	}
	if err := s.kv.Put(s.key, data); err != nil {
		log.ErrorErr(log.CatStore, "Failed to save timers", err, "key", s.key)
	}
}

// commitLocked persists and publishes the new state.
func (s *Store) commitLocked(eventType pubsub.EventType) {
	s.saveLocked()
	s.broker.Publish(eventType, s.snapshotLocked())
}

func (s *Store) pauseRunningLocked(now time.Time) {
	for _, t := range s.timers {
		if t.IsRunning() {
			t.Pause(now)
			log.Debug(log.CatStore, "Paused running timer", "id", t.ID)
		}
	}
}

func (s *Store) findLocked(id string) *timer.Timer {
	for _, t := range s.timers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	out := make([]timer.Timer, len(s.timers))
	for i, t := range s.timers {
		out[i] = t.Clone()
	}
	return Snapshot{Timers: out, TakenAt: s.clock.Now()}
}

// Snapshot returns a copy of the whole collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Timers returns copies of every timer, newest first.
func (s *Store) Timers() []timer.Timer {
	return s.Snapshot().Timers
}

// Get returns the timer with the given id.
func (s *Store) Get(id string) (timer.Timer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t := s.findLocked(id); t != nil {
		return t.Clone(), nil
	}
	return timer.Timer{}, &NotFoundError{ID: id}
}

// Resolve finds a timer by exact id or by unique id prefix.
func (s *Store) Resolve(prefix string) (timer.Timer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return timer.Timer{}, &NotFoundError{ID: prefix}
	}
	if t := s.findLocked(prefix); t != nil {
		return t.Clone(), nil
	}

	var matches []*timer.Timer
	for _, t := range s.timers {
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return timer.Timer{}, &NotFoundError{ID: prefix}
	case 1:
		return matches[0].Clone(), nil
	default:
		ids := make([]string, len(matches))
		for i, t := range matches {
			ids[i] = shortID(t.ID)
		}
		return timer.Timer{}, &AmbiguousIDError{Prefix: prefix, Matches: ids}
	}
}

// ActiveTimers returns running and paused timers.
func (s *Store) ActiveTimers() []timer.Timer {
	return s.Snapshot().Active()
}

// RunningTimer returns the running timer, if any.
func (s *Store) RunningTimer() (timer.Timer, bool) {
	return s.Snapshot().Running()
}

// TimerCount returns the number of active timers.
func (s *Store) TimerCount() int {
	return len(s.ActiveTimers())
}

// RunningCount returns the number of running timers (0 or 1).
func (s *Store) RunningCount() int {
	return s.Snapshot().RunningCount()
}

// HasActiveTimers reports whether any timer is running or paused.
func (s *Store) HasActiveTimers() bool {
	return s.TimerCount() > 0
}

// CompletedToday returns timers stopped since local midnight.
func (s *Store) CompletedToday() []timer.Timer {
	snap := s.Snapshot()
	return snap.CompletedToday(snap.TakenAt)
}

// Now returns the store's notion of the current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// shortID returns the first 8 characters of id, for messages.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ShortID is the display form of a timer id.
func ShortID(id string) string {
	return shortID(id)
}
