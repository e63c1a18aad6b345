package sqlite

import "time"

// KVModel is a row of the kv table.
type KVModel struct {
	Key       string
	Value     []byte
	UpdatedAt int64 // Unix milliseconds
}

func newKVModel(key string, value []byte, now time.Time) *KVModel {
	if value == nil {
		value = []byte{}
	}
	return &KVModel{
		Key:       key,
		Value:     value,
		UpdatedAt: now.UnixMilli(),
	}
}

// UpdatedTime returns UpdatedAt as a time.Time.
func (m *KVModel) UpdatedTime() time.Time {
	return time.UnixMilli(m.UpdatedAt)
}
