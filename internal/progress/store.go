package progress

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Backend is the string key/value storage the Store persists records to.
// Get reports ok=false when the key has never been written.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store loads and saves Progress Records. It never surfaces storage
// errors: corrupt entries read as empty records, and a failing backend
// switches the store to an in-memory copy for the rest of the process.
//
// Callers read-modify-write whole records; the Store is meant to be used
// from a single flow of control at a time.
type Store struct {
	backend Backend
	log     *zap.Logger

	mu       sync.Mutex
	degraded bool
	memory   map[string]Record
}

// NewStore creates a Store over backend. A nil logger disables logging.
func NewStore(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend: backend,
		log:     log,
		memory:  make(map[string]Record),
	}
}

// Load returns the record stored under key, or a zero record when none
// exists or the stored value is not a valid record.
func (s *Store) Load(ctx context.Context, key string) Record {
	s.mu.Lock()
	if s.degraded {
		rec, ok := s.memory[key]
		s.mu.Unlock()
		if !ok {
			return NewRecord()
		}
		return rec.Clone()
	}
	s.mu.Unlock()

	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.degrade(err)
		return NewRecord()
	}
	if !ok || raw == "" {
		return NewRecord()
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.Warn("discarding corrupt progress record",
			zap.String("key", key), zap.Error(err))
		// Clear the entry so the next load does not parse it again.
		if delErr := s.backend.Delete(ctx, key); delErr != nil {
			s.log.Warn("clear corrupt progress record", zap.String("key", key), zap.Error(delErr))
		}
		return NewRecord()
	}
	rec.ensure()
	return rec
}

// Save overwrites the record stored under key.
func (s *Store) Save(ctx context.Context, key string, rec Record) {
	rec.ensure()

	s.mu.Lock()
	if s.degraded {
		s.memory[key] = rec.Clone()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	b, err := json.Marshal(rec)
	if err != nil {
		// Record only holds maps of strings and ints; this cannot happen.
		s.log.Error("marshal progress record", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.backend.Set(ctx, key, string(b)); err != nil {
		s.degrade(err)
		s.mu.Lock()
		s.memory[key] = rec.Clone()
		s.mu.Unlock()
	}
}

// Clear removes the record stored under key.
func (s *Store) Clear(ctx context.Context, key string) {
	s.mu.Lock()
	delete(s.memory, key)
	degraded := s.degraded
	s.mu.Unlock()
	if degraded {
		return
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		s.degrade(err)
	}
}

// Degraded reports whether the store has fallen back to memory.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) degrade(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.degraded {
		return
	}
	s.degraded = true
	s.log.Warn("progress storage unavailable, keeping progress in memory", zap.Error(err))
}
