// Package memory is an in-process implementation of every repository port.
// It mirrors the PostgreSQL locking discipline: rows are locked for the rest of
// a unit of work and every write inside it is undone on rollback.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
)

// Store holds all data in maps guarded by mu. Row locks are separate from mu and
// are held across calls for the lifetime of a unit of work.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]domain.Account
	transactions  map[string]domain.Transaction
	splits        map[string]domain.TransactionSplit
	bills         map[string]domain.RecurringBill
	budgets       map[string]domain.Budget
	notifications map[string]domain.Notification
	contacts      map[string]domain.UserContact
	currencies    map[string]domain.Currency
	rates         map[string]domain.ExchangeRate
	audit         []domain.AuditEntry

	locksMu  sync.Mutex
	rowLocks map[string]chan struct{}
}

// NewStore returns an empty store seeded with the default currencies.
func NewStore() *Store {
	s := &Store{
		accounts:      make(map[string]domain.Account),
		transactions:  make(map[string]domain.Transaction),
		splits:        make(map[string]domain.TransactionSplit),
		bills:         make(map[string]domain.RecurringBill),
		budgets:       make(map[string]domain.Budget),
		notifications: make(map[string]domain.Notification),
		contacts:      make(map[string]domain.UserContact),
		currencies:    make(map[string]domain.Currency),
		rates:         make(map[string]domain.ExchangeRate),
		rowLocks:      make(map[string]chan struct{}),
	}
	for _, c := range []domain.Currency{
		{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar", IsActive: true},
		{CurrencyCode: "SOS", Symbol: "Sh", Name: "Somali Shilling", IsActive: true},
	} {
		s.currencies[c.CurrencyCode] = c
	}
	return s
}

// NewRepositoryProvider wires a store into every repository slot.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:         s,
		AccountRepo:       s,
		TransactionRepo:   s,
		RecurringBillRepo: s,
		BudgetRepo:        s,
		NotificationRepo:  s,
		UserContactRepo:   s,
		CurrencyRepo:      s,
		ExchangeRateRepo:  s,
		AuditRepo:         s,
	}
}

var _ portsrepo.TransactionManager = (*Store)(nil)

func (s *Store) rowLock(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.rowLocks[key]
	if !ok {
		l = make(chan struct{}, 1)
		s.rowLocks[key] = l
	}
	return l
}

// acquire blocks until key is free or ctx ends. A cancelled wait is reported as a
// concurrency conflict, like a lock timeout in PostgreSQL.
func (s *Store) acquire(ctx context.Context, key string) (chan struct{}, error) {
	l := s.rowLock(key)
	select {
	case l <- struct{}{}:
		return l, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for lock on %s: %w", apperrors.ErrConcurrencyConflict, key, ctx.Err())
	}
}

// withRowLock runs fn while holding a single row lock, for writes made outside a unit of work.
func (s *Store) withRowLock(ctx context.Context, key string, fn func() error) error {
	l, err := s.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() { <-l }()
	return fn()
}

// WithinTransaction runs fn with a unit of work. Locks are released when fn returns;
// writes are reverted if fn fails or panics.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) (err error) {
	tx := &memTx{store: s, held: make(map[string]chan struct{})}
	defer tx.release()
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// memTx is the LedgerTx of the memory store.
type memTx struct {
	store *Store
	held  map[string]chan struct{}
	order []string
	undo  []func()
}

var _ portsrepo.LedgerTx = (*memTx)(nil)

func (tx *memTx) lock(ctx context.Context, key string) error {
	if _, ok := tx.held[key]; ok {
		return nil
	}
	l, err := tx.store.acquire(ctx, key)
	if err != nil {
		return err
	}
	tx.held[key] = l
	tx.order = append(tx.order, key)
	return nil
}

func (tx *memTx) release() {
	for i := len(tx.order) - 1; i >= 0; i-- {
		<-tx.held[tx.order[i]]
	}
	tx.held = nil
	tx.order = nil
}

// rollback applies the undo log newest first.
func (tx *memTx) rollback() {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// write applies fn under the store lock and records undo for rollback.
// undo also runs under the store lock.
func (tx *memTx) write(fn func() (undo func(), err error)) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	undo, err := fn()
	if err != nil {
		return err
	}
	if undo != nil {
		tx.undo = append(tx.undo, undo)
	}
	return nil
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, kind, id)
}

func duplicate(kind, id string) error {
	return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicate, kind, id)
}
