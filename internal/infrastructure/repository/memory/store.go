// Package memory provides in-process implementations of the domain
// repositories. It backs DB_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
)

type ctxKey struct{}

// Store holds every collection behind one lock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products    map[uuid.UUID]entity.Product
	sales       map[uuid.UUID]entity.Sale
	customers   map[uuid.UUID]entity.Customer
	suppliers   map[uuid.UUID]entity.Supplier
	users       map[uuid.UUID]entity.User
	idempotency map[string]entity.IdempotencyKey
	sequences   map[string]int64

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		products:    make(map[uuid.UUID]entity.Product),
		sales:       make(map[uuid.UUID]entity.Sale),
		customers:   make(map[uuid.UUID]entity.Customer),
		suppliers:   make(map[uuid.UUID]entity.Supplier),
		users:       make(map[uuid.UUID]entity.User),
		idempotency: make(map[string]entity.IdempotencyKey),
		sequences:   make(map[string]int64),
		now:         time.Now,
	}
}

// SetClock replaces the time source used for timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// journal collects the compensating actions of one transaction. Undo
// entries touch only what the transaction itself changed, so writes made
// meanwhile by other requests survive a rollback.
type journal struct {
	undo []func()
}

func journalFrom(ctx context.Context) *journal {
	j, _ := ctx.Value(ctxKey{}).(*journal)
	return j
}

// onRollback registers fn to run if the transaction in ctx fails.
// Callers hold s.mu; outside a transaction it does nothing.
func (s *Store) onRollback(ctx context.Context, fn func()) {
	if j := journalFrom(ctx); j != nil {
		j.undo = append(j.undo, fn)
	}
}

// rollback runs the undo entries newest first
func (s *Store) rollback(j *journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}

type txManager struct {
	store *Store
}

// NewTxManager creates a transaction manager over the store.
// Transactions run one at a time; a failed one reverts its own writes.
func NewTxManager(store *Store) domainRepo.TxManager {
	return &txManager{store: store}
}

func (m *txManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, ctxKey{}, j)); err != nil {
		m.store.rollback(j)
		return err
	}
	return nil
}

type sequence struct {
	store *Store
}

// NewSequence creates a per-day counter kept in the store
func NewSequence(store *Store) domainRepo.SequenceGenerator {
	return &sequence{store: store}
}

func (q *sequence) Next(ctx context.Context, day string) (int64, error) {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	q.store.sequences[day]++
	q.store.onRollback(ctx, func() { q.store.sequences[day]-- })
	return q.store.sequences[day], nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
