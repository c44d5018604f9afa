package orbit

import (
	"sort"
	"sync"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// Store holds the reference table. Readers always see either the old or the
// new table, never a mix.
type Store struct {
	mu    sync.RWMutex
	table domain.Table
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		table: make(domain.Table),
	}
}

// Replace swaps the table for a copy of table.
func (s *Store) Replace(table domain.Table) {
	cloned := table.Clone()

	s.mu.Lock()
	s.table = cloned
	s.mu.Unlock()
}

// Merge overwrites the entries of partial whose identifiers are already in
// the table. Unknown identifiers are ignored. It returns the updated and
// ignored identifiers, each sorted.
func (s *Store) Merge(partial domain.Table) (updated, ignored []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range partial {
		if _, ok := s.table[id]; !ok {
			ignored = append(ignored, id)

			continue
		}

		s.table[id] = c
		updated = append(updated, id)
	}

	sort.Strings(updated)
	sort.Strings(ignored)

	return updated, ignored
}

// Export returns a snapshot of the table.
func (s *Store) Export() domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.table.Clone()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.table)
}
