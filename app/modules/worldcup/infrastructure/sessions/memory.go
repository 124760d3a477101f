package worldcupsessions

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
)

// sweepThreshold is the minimum map size before a save sweeps expired entries.
const sweepThreshold = 1000

type memoryEntry struct {
	payload []byte
	version int64
	expires time.Time
}

// MemoryStore is a process-local Store. Values are kept serialized so callers
// never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore. A ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, key string, state *worldcupdomain.TournamentState) error {
	entry, err := s.newEntry(key, state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[storageKey(key)] = entry
	if len(s.entries) > sweepThreshold {
		s.evictExpiredLocked()
	}
	return nil
}

func (s *MemoryStore) CompareAndSave(_ context.Context, key string, expectedVersion int64, state *worldcupdomain.TournamentState) error {
	entry, err := s.newEntry(key, state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.liveLocked(key)
	if !ok {
		return ErrSessionNotFound
	}
	if current.version != expectedVersion {
		return fmt.Errorf("%w: session %s at version %d, expected %d", ErrSessionConflict, key, current.version, expectedVersion)
	}
	s.entries[storageKey(key)] = entry
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) (*worldcupdomain.TournamentState, error) {
	s.mu.Lock()
	entry, ok := s.liveLocked(key)
	s.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeState(key, entry.payload)
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, storageKey(key))
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	return len(s.entries)
}

func (s *MemoryStore) newEntry(key string, state *worldcupdomain.TournamentState) (memoryEntry, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return memoryEntry{}, fmt.Errorf("marshal session %s: %w", key, err)
	}
	entry := memoryEntry{payload: payload, version: state.Version}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	return entry, nil
}

// liveLocked returns the entry under key, dropping it if it has expired.
func (s *MemoryStore) liveLocked(key string) (memoryEntry, bool) {
	entry, ok := s.entries[storageKey(key)]
	if ok && s.expired(entry) {
		delete(s.entries, storageKey(key))
		return memoryEntry{}, false
	}
	return entry, ok
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

func (s *MemoryStore) evictExpiredLocked() {
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
