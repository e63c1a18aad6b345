package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/tact/internal/kv"
)

// kvRepository implements kv.Store on the kv table.
type kvRepository struct {
	db  *DB
	now func() time.Time
}

func newKVRepository(db *DB) *kvRepository {
	return &kvRepository{db: db, now: time.Now}
}

// Ensure kvRepository implements kv.Store.
var _ kv.Store = (*kvRepository)(nil)

func (r *kvRepository) Get(key string) ([]byte, error) {
	model, err := r.find(key)
	if err != nil {
		return nil, err
	}
	return model.Value, nil
}

func (r *kvRepository) find(key string) (*KVModel, error) {
	var model KVModel
	err := r.db.conn.QueryRow(
		`SELECT key, value, updated_at FROM kv WHERE key = ?`, key,
	).Scan(&model.Key, &model.Value, &model.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return &model, nil
}

func (r *kvRepository) Put(key string, value []byte) error {
	model := newKVModel(key, value, r.now())
	_, err := r.db.conn.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		model.Key, model.Value, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (r *kvRepository) Close() error {
	return r.db.Close()
}
