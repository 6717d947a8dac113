package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the in-process fallback for job locks and run summaries
// when Redis is not configured. Locks held here do not protect against a
// second instance; acceptable in development.
type MemoryStore struct {
	mu    sync.Mutex
	locks map[string]time.Time
	runs  map[string]map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks: make(map[string]time.Time),
		runs:  make(map[string]map[string]json.RawMessage),
	}
}

// Acquire takes the tenant's job lock when it is free or expired.
func (s *MemoryStore) Acquire(_ context.Context, tenantID uuid.UUID, job string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lockKey(tenantID, job)
	if expiry, held := s.locks[key]; held && time.Now().Before(expiry) {
		return false, nil
	}
	s.locks[key] = time.Now().Add(ttl)
	return true, nil
}

// Release frees the tenant's job lock.
func (s *MemoryStore) Release(_ context.Context, tenantID uuid.UUID, job string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, lockKey(tenantID, job))
	return nil
}

// RecordRun stores the last summary of one job.
func (s *MemoryStore) RecordRun(_ context.Context, tenantID uuid.UUID, job string, summary interface{}) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := statusKey(tenantID)
	if s.runs[key] == nil {
		s.runs[key] = make(map[string]json.RawMessage)
	}
	s.runs[key][job] = payload
	return nil
}

// LastRuns returns the stored summaries per job name.
func (s *MemoryStore) LastRuns(_ context.Context, tenantID uuid.UUID) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]json.RawMessage)
	for job, payload := range s.runs[statusKey(tenantID)] {
		out[job] = payload
	}
	return out, nil
}
