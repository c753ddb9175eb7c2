package ledger

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store persists the ledger across process runs. Commit must apply the
// increment atomically with respect to other Commits on the same store.
type Store interface {
	// Load returns a snapshot of the persisted ledger. An empty store
	// returns an empty ledger, not an error.
	Load(ctx context.Context) (Ledger, error)

	// Commit adds usage to the persisted values and returns the ledger
	// after the increment.
	Commit(ctx context.Context, usage map[string]float64) (Ledger, error)
}

// memoryStore keeps the ledger for the lifetime of the process.
type memoryStore struct {
	mu     sync.Mutex
	ledger Ledger
}

// NewMemoryStore returns a Store seeded with initial, which is copied.
func NewMemoryStore(initial Ledger) Store {
	return &memoryStore{ledger: initial.Clone()}
}

func (s *memoryStore) Load(ctx context.Context) (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone(), nil
}

func (s *memoryStore) Commit(ctx context.Context, usage map[string]float64) (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.ledger.Add(usage)
	if err != nil {
		return nil, err
	}
	s.ledger = next
	log.Debugf("memory ledger committed: %s", next)
	return next.Clone(), nil
}

// nopStore never persists. Load is always empty and Commit returns usage
// added to nothing.
type nopStore struct{}

func NewNopStore() Store {
	return nopStore{}
}

func (nopStore) Load(ctx context.Context) (Ledger, error) {
	return New(), nil
}

func (nopStore) Commit(ctx context.Context, usage map[string]float64) (Ledger, error) {
	return New().Add(usage)
}
