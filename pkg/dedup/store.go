package dedup

import "sync"

// Scope tags which collection an item was seen in. The same item can be
// acquired once per scope: a post also appearing in someone's likes is a
// different key.
type Scope string

const (
	ScopePost  Scope = "post"
	ScopeLike  Scope = "like"
	ScopeMix   Scope = "mix"
	ScopeMusic Scope = "music"
)

// Key identifies one acquired item within a scope
type Key struct {
	Scope   Scope
	OwnerID string
	ItemID  string
}

// Store records which items have been fully acquired. MarkDone is only
// called after every file of an item landed, so IsDone implies the item
// is complete on disk (or was, at the time).
type Store interface {
	IsDone(key Key) (bool, error)
	// MarkDone is idempotent; snapshot is the raw item JSON at acquisition time
	MarkDone(key Key, snapshot []byte) error
	Close() error
}

// MemoryStore is a Store kept entirely in memory, for tests and for runs
// with the database disabled.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[Key][]byte)}
}

func (s *MemoryStore) IsDone(key Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[key]
	return ok, nil
}

func (s *MemoryStore) MarkDone(key Key, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return nil
	}
	s.seen[key] = append([]byte(nil), snapshot...)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len reports how many keys are recorded (test helper)
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
