// Package pooltracker maintains the write-once pool identity store. The
// first qualifying creation event fixes a pool's record forever; later
// writes to the same key are ignored. Emitters read the store to attach
// token and fee context to swap rows.
package pooltracker

import (
	"encoding/hex"
	"sync"
)

// PoolRecord is the identity of one pool, exchange, order or market. The
// fields beyond factory and currencies apply only where a protocol has
// them; Extras carries everything else as strings.
type PoolRecord struct {
	Factory     []byte
	Currency0   []byte
	Currency1   []byte
	Fee         uint64
	TickSpacing int32
	BinStep     uint32
	Stable      bool
	Extras      map[string]string
}

// Store is the write-once key/value contract. Keys are lowercase hex of
// the raw bytes (20-byte addresses or 32-byte ids).
type Store interface {
	SetIfAbsent(key string, rec *PoolRecord)
	GetFirst(key string) (*PoolRecord, bool)
}

// Key renders raw key bytes into the store's canonical string form.
func Key(b []byte) string {
	return hex.EncodeToString(b)
}

// MemoryStore keeps records in process memory. Set-once is enforced under
// a mutex so a concurrent host cannot interleave a read between the check
// and the write.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*PoolRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*PoolRecord)}
}

func (s *MemoryStore) SetIfAbsent(key string, rec *PoolRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[key]; exists {
		return
	}
	s.records[key] = rec
}

func (s *MemoryStore) GetFirst(key string) (*PoolRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Len reports the number of recorded pools.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
