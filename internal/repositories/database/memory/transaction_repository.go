package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finance_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

var _ portsrepo.TransactionRepositoryFacade = (*Store)(nil)

func transactionKey(id string) string { return "transaction:" + id }

func (s *Store) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[transactionID]
	if !ok {
		return nil, notFound("transaction", transactionID)
	}
	return &t, nil
}

func (s *Store) ListTransactionsByAccount(ctx context.Context, ownerID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	s.mu.RLock()
	matches := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.OwnerID != ownerID || t.IsDeleted {
			continue
		}
		if t.AccountID != accountID && t.TargetAccountID != accountID {
			continue
		}
		if cursor != nil && !cursor.Before(t.TransactionDate, t.CreatedAt, t.TransactionID) {
			continue
		}
		matches = append(matches, t)
	}
	s.mu.RUnlock()

	// newest first: a precedes b when b sorts after a's cursor
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		return cursorOf(a).Before(b.TransactionDate, b.CreatedAt, b.TransactionID)
	})

	if limit <= 0 || len(matches) <= limit {
		return matches, nil, nil
	}
	page := matches[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(cursorOf(last))
	return page, &token, nil
}

func cursorOf(t domain.Transaction) pagination.Cursor {
	return pagination.Cursor{Date: t.TransactionDate, CreatedAt: t.CreatedAt, ID: t.TransactionID}
}

func (s *Store) ListSplitsByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionSplit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	splits := make([]domain.TransactionSplit, 0)
	for _, sp := range s.splits {
		if sp.TransactionID == transactionID {
			splits = append(splits, sp)
		}
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].Category < splits[j].Category })
	return splits, nil
}

func (s *Store) SumExpensesByCategory(ctx context.Context, ownerID, category string, month, year int) (decimal.Decimal, error) {
	start, end := domain.MonthBounds(month, year)
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, t := range s.transactions {
		if t.OwnerID != ownerID || t.IsDeleted || t.TransactionType != domain.Expense || t.Category != category {
			continue
		}
		if t.TransactionDate.Before(start) || !t.TransactionDate.Before(end) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

func (tx *memTx) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return tx.write(func() (func(), error) {
		if _, ok := tx.store.transactions[txn.TransactionID]; ok {
			return nil, duplicate("transaction", txn.TransactionID)
		}
		tx.store.transactions[txn.TransactionID] = txn
		return func() { delete(tx.store.transactions, txn.TransactionID) }, nil
	})
}

func (tx *memTx) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if err := tx.lock(ctx, transactionKey(transactionID)); err != nil {
		return nil, err
	}
	return tx.store.FindTransactionByID(ctx, transactionID)
}

func (tx *memTx) MarkTransactionDeleted(ctx context.Context, transactionID string, userID string, now time.Time) error {
	return tx.write(func() (func(), error) {
		prev, ok := tx.store.transactions[transactionID]
		if !ok {
			return nil, notFound("transaction", transactionID)
		}
		next := prev
		next.IsDeleted = true
		next.LastUpdatedAt = now
		next.LastUpdatedBy = userID
		tx.store.transactions[transactionID] = next
		return func() { tx.store.transactions[transactionID] = prev }, nil
	})
}

func (tx *memTx) SumSplits(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	total := decimal.Zero
	for _, sp := range tx.store.splits {
		if sp.TransactionID == transactionID {
			total = total.Add(sp.Amount)
		}
	}
	return total, nil
}

func (tx *memTx) SaveSplit(ctx context.Context, split domain.TransactionSplit) error {
	return tx.write(func() (func(), error) {
		for _, sp := range tx.store.splits {
			if sp.TransactionID == split.TransactionID && sp.Category == split.Category {
				return nil, duplicate("split category", split.Category)
			}
		}
		tx.store.splits[split.SplitID] = split
		return func() { delete(tx.store.splits, split.SplitID) }, nil
	})
}
