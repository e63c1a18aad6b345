// Package watcher notifies when timer storage files change on disk, so a
// long-running dashboard picks up edits made by another tact process.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/tact/internal/log"
)

// DefaultDebounce coalesces bursts of writes (SQLite touches the db, -wal and
// -shm files for a single commit).
const DefaultDebounce = 250 * time.Millisecond

// Watcher monitors a storage directory and signals when a watched file changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	files     map[string]struct{}
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	// Dir is the directory to watch.
	Dir string

	// Files are the base names inside Dir that trigger a notification.
	Files []string

	DebounceDur time.Duration
}

// DefaultConfig watches the given storage files. All paths must share a directory.
func DefaultConfig(paths ...string) Config {
	cfg := Config{DebounceDur: DefaultDebounce}
	for _, p := range paths {
		cfg.Dir = filepath.Dir(p)
		cfg.Files = append(cfg.Files, filepath.Base(p))
	}
	return cfg
}

// SQLiteFiles returns the database file and its WAL companion.
func SQLiteFiles(dbPath string) []string {
	return []string{dbPath, dbPath + "-wal"}
}

// New creates a watcher. Call Start to begin receiving notifications.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" || len(cfg.Files) == 0 {
		return nil, fmt.Errorf("watcher needs a directory and at least one file")
	}
	debounce := cfg.DebounceDur
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	files := make(map[string]struct{}, len(cfg.Files))
	for _, f := range cfg.Files {
		files[f] = struct{}{}
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		files:     files,
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start watches the directory and returns the notification channel.
func (w *Watcher) Start() (<-chan struct{}, error) {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}
	log.Debug(log.CatWatcher, "Watching storage", "dir", w.dir, "debounce", w.debounce)

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	// Stopped timer with a drained channel; Reset arms it.
	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			debounce.Reset(w.debounce)

		case <-debounce.C:
			select {
			case w.onChange <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watcher error", err, "dir", w.dir)

		case <-w.done:
			return
		}
	}
}

// isRelevantEvent reports whether event touches a watched file in a way that
// changes its content. The file backend replaces files by rename, which shows
// up as Create on the target.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	_, ok := w.files[filepath.Base(event.Name)]
	return ok
}
