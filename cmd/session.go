package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/tact/internal/config"
	"github.com/zjrosen/tact/internal/entryapi"
	"github.com/zjrosen/tact/internal/infrastructure/file"
	"github.com/zjrosen/tact/internal/infrastructure/sqlite"
	"github.com/zjrosen/tact/internal/kv"
	"github.com/zjrosen/tact/internal/log"
	"github.com/zjrosen/tact/internal/paths"
	"github.com/zjrosen/tact/internal/store"
	"github.com/zjrosen/tact/internal/tracing"
	"github.com/zjrosen/tact/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

// session is everything a timer command needs: storage, the entry client
// and the store on top of them.
type session struct {
	store   *store.Store
	kv      kv.Store
	tracer  *tracing.Provider
	watched []string
}

func (o *rootOptions) openSession() (*session, error) {
	cfg := o.cfg

	tp, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.TracesFilePath(),
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	storage, watched, err := openStorage(cfg)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, err
	}

	client := entryapi.New(cfg.APIURL, entryapi.WithTracer(tp.Tracer()))
	opts := append([]store.Option{store.WithTracer(tp.Tracer())}, o.storeOpts...)
	st := store.New(storage, client, opts...)

	return &session{store: st, kv: storage, tracer: tp, watched: watched}, nil
}

// openStorage opens the configured backend and reports which files change
// when timers are saved.
func openStorage(cfg config.Config) (kv.Store, []string, error) {
	dir := cfg.DataDir()
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fs, err := file.New(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening file storage: %w", err)
		}
		return fs, []string{fs.Path(store.DefaultKey)}, nil
	default:
		db, err := sqlite.NewDB(paths.DatabaseFile(dir))
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return db.KV(), watcher.SQLiteFiles(db.Path()), nil
	}
}

// Close flushes traces and releases storage.
func (s *session) Close() {
	s.store.Close()
	if err := s.kv.Close(); err != nil {
		log.ErrorErr(log.CatDB, "Failed to close storage", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.tracer.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
	}
}
