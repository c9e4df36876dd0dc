package server

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/veralux-ai/veralux/internal/audit"
)

// Request status values exposed through /v1/requests/{id}.
const (
	statusProcessing = "processing"
	statusComplete   = "complete"
	statusFailed     = "failed"
)

type requestEntry struct {
	ID        string
	ClientID  string
	Operation string
	Status    string
	Event     *audit.Event
	CreatedAt time.Time
}

// requestStore keeps recent decisions for status lookups. Entries expire
// after the TTL; the store is a convenience cache, not durable storage.
type requestStore struct {
	mu      sync.Mutex
	entries map[string]*requestEntry
	ttl     time.Duration
}

func newRequestStore(ttl time.Duration) *requestStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &requestStore{
		entries: make(map[string]*requestEntry),
		ttl:     ttl,
	}
}

// Start registers a new in-flight request and returns its ID.
func (s *requestStore) Start(clientID, operation string) string {
	id := newRequestID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
	s.entries[id] = &requestEntry{
		ID:        id,
		ClientID:  clientID,
		Operation: operation,
		Status:    statusProcessing,
		CreatedAt: time.Now(),
	}
	return id
}

// Complete records the finished decision for the request.
func (s *requestStore) Complete(id string, ev *audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return
	}
	entry.Status = statusComplete
	entry.Event = ev
}

// Fail marks a request that errored before producing a decision, so a status
// lookup never reports it as still in flight.
func (s *requestStore) Fail(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[id]; ok {
		entry.Status = statusFailed
	}
}

// Get returns the entry for id, or false if unknown or expired.
func (s *requestStore) Get(id string) (*requestEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
	entry, ok := s.entries[id]
	return entry, ok
}

func (s *requestStore) cleanupLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

func newRequestID() string {
	var buf [16]byte
	rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
