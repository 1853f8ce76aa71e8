// Package memory provides in-memory collaborators for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/tendant/memento/pkg/memento"
)

// RecordStore keeps inserted rows per table.
type RecordStore struct {
	mu     sync.RWMutex
	tables map[string][]memento.ContentRecord
	err    error
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{tables: make(map[string][]memento.ContentRecord)}
}

// InsertRecord appends a copy of record to table.
func (s *RecordStore) InsertRecord(ctx context.Context, table string, record *memento.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	row := *record
	row.Tags = append([]string{}, record.Tags...)
	if record.UserID != nil {
		id := *record.UserID
		row.UserID = &id
	}
	s.tables[table] = append(s.tables[table], row)
	return nil
}

// Records returns the rows of table in insertion order.
func (s *RecordStore) Records(table string) []memento.ContentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]memento.ContentRecord(nil), s.tables[table]...)
}

// FailWith makes subsequent inserts return err; nil restores normal behaviour.
func (s *RecordStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
