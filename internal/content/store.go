package content

import (
	"sort"
	"sync"
)

// Store is the process-lifetime record set, keyed by collection name and
// record id. The sync engine is the only writer; the rendering layer only
// reads. Mutations are guarded so concurrently in-flight per-file tasks can
// interleave safely, and a freshly-set record is visible to reads before the
// write call returns.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]Record
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		collections: map[string]map[string]Record{},
	}
}

// Set upserts a record, replacing any existing record under the same id
// wholesale. Records are never merged field by field.
func (s *Store) Set(collection string, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.collections[collection]
	if !ok {
		records = map[string]Record{}
		s.collections[collection] = records
	}
	records[record.ID] = record
}

// Delete removes the record under id if present; deleting an unknown id is a
// no-op. It reports whether a record was removed.
func (s *Store) Delete(collection, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.collections[collection]
	if !ok {
		return false
	}
	if _, ok := records[id]; !ok {
		return false
	}
	delete(records, id)
	return true
}

// GetByID returns the record stored under id.
func (s *Store) GetByID(collection, id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.collections[collection][id]
	return record, ok
}

// GetAll returns every record in the collection, ordered by id for
// deterministic iteration. The returned slice is a copy.
func (s *Store) GetAll(collection string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.collections[collection]
	out := make([]Record, 0, len(records))
	for _, record := range records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Len reports the number of records in the collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}
