package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var _ portsrepo.AccountRepositoryFacade = (*Store)(nil)

func accountKey(id string) string { return "account:" + id }

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, notFound("account", accountID)
	}
	return &a, nil
}

func (s *Store) ListAccountsByOwner(ctx context.Context, ownerID string, limit int, offset int) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]domain.Account, 0)
	for _, a := range s.accounts {
		if a.OwnerID == ownerID && !a.IsDeleted {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Name != accounts[j].Name {
			return accounts[i].Name < accounts[j].Name
		}
		return accounts[i].AccountID < accounts[j].AccountID
	})
	if offset >= len(accounts) {
		return []domain.Account{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(accounts) {
		end = len(accounts)
	}
	return accounts[offset:end], nil
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.AccountID]; ok {
		return duplicate("account", account.AccountID)
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	return s.withRowLock(ctx, accountKey(accountID), func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		a, ok := s.accounts[accountID]
		if !ok || a.IsDeleted {
			return notFound("account", accountID)
		}
		a.IsActive = false
		a.IsDeleted = true
		a.LastUpdatedAt = now
		a.LastUpdatedBy = userID
		s.accounts[accountID] = a
		return nil
	})
}

// FindAccountsByIDsForUpdate locks the accounts in ascending id order and returns them.
func (tx *memTx) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	ids := sortedUnique(accountIDs)
	for _, id := range ids {
		if err := tx.lock(ctx, accountKey(id)); err != nil {
			return nil, err
		}
	}

	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	accounts := make(map[string]domain.Account, len(ids))
	for _, id := range ids {
		a, ok := tx.store.accounts[id]
		if !ok {
			return nil, notFound("account", id)
		}
		accounts[id] = a
	}
	return accounts, nil
}

func (tx *memTx) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	for _, id := range sortedUnique(keys(balanceChanges)) {
		id := id
		delta := balanceChanges[id]
		err := tx.write(func() (func(), error) {
			prev, ok := tx.store.accounts[id]
			if !ok {
				return nil, notFound("account", id)
			}
			next := prev
			next.Balance = prev.Balance.Add(delta)
			next.LastUpdatedAt = now
			next.LastUpdatedBy = userID
			tx.store.accounts[id] = next
			return func() { tx.store.accounts[id] = prev }, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func keys(m map[string]decimal.Decimal) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
