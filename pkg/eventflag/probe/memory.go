package probe

import "sync"

// MemoryStore is an in-memory Store implementation.
// Suitable for tests and short-lived diagnostics.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	closed  bool
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory probe store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a record to the log.
func (s *MemoryStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.records = append(s.records, rec)
	return nil
}

// List returns records for a flag name, oldest first.
func (s *MemoryStore) List(flagName string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var out []Record
	for _, rec := range s.records {
		if flagName == "" || rec.Flag == flagName {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Purge removes all records.
func (s *MemoryStore) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.records = nil
	return nil
}

// Close marks the store closed. Further operations return ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	return nil
}
