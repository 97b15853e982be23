// Package memory provides an in-memory Store implementation. It is used by
// unit tests and by `eppd start --store memory` for local development; it is
// not durable and holds every object in process memory guarded by a single
// mutex for the whole transaction.
package memory

import (
	"context"
	"sync"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// Store is a single-process, mutex-guarded implementation of store.Store.
//
// Isolation: WithTransaction holds the store-wide lock for the duration of
// fn, so every check-then-write sequence a handler performs is trivially
// serialized against every other command. This is stronger than the
// repeatable-read the interface requires, traded for simplicity.
type Store struct {
	mu         sync.Mutex
	domains    map[string]*store.Domain
	contacts   map[string]*store.Contact
	hosts      map[string]*store.Host
	domainNS   map[string]map[string]bool // domain -> set of host names
	transfers  map[string][]*store.Transfer
	registrars map[string]*store.Registrar
	nextTxfrID int64
}

// New creates an empty memory store seeded with the given registrars.
func New(registrars map[string]*store.Registrar) *Store {
	if registrars == nil {
		registrars = map[string]*store.Registrar{}
	}
	return &Store{
		domains:    make(map[string]*store.Domain),
		contacts:   make(map[string]*store.Contact),
		hosts:      make(map[string]*store.Host),
		domainNS:   make(map[string]map[string]bool),
		transfers:  make(map[string][]*store.Transfer),
		registrars: registrars,
	}
}

func (s *Store) Registrar(_ context.Context, clID string) (*store.Registrar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.registrars[clID]
	if !ok {
		return nil, store.NewError(store.ErrNotFound, "unknown registrar")
	}
	return r, nil
}

func (s *Store) Close() error { return nil }

// WithTransaction executes fn while holding the store's single lock. A panic
// inside fn propagates after the lock is released. memTxn writes straight
// into the store's maps, so writes fn made before returning an error or
// panicking are kept; this store does not roll them back.
func (s *Store) WithTransaction(ctx context.Context, fn func(store.Txn) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTxn{s: s}
	return fn(tx)
}

// memTxn operates directly on the parent Store's maps; the parent's mutex
// held by WithTransaction is the only synchronization needed.
type memTxn struct {
	s *Store
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
