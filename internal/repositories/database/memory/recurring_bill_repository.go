package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
)

var _ portsrepo.RecurringBillRepositoryFacade = (*Store)(nil)

func billKey(id string) string { return "bill:" + id }

func cloneBill(b domain.RecurringBill) domain.RecurringBill {
	if b.EndDate != nil {
		end := *b.EndDate
		b.EndDate = &end
	}
	if b.LastGeneratedDate != nil {
		last := *b.LastGeneratedDate
		b.LastGeneratedDate = &last
	}
	return b
}

func (s *Store) FindRecurringBillByID(ctx context.Context, billID string) (*domain.RecurringBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[billID]
	if !ok {
		return nil, notFound("recurring bill", billID)
	}
	b = cloneBill(b)
	return &b, nil
}

func (s *Store) ListRecurringBillsByOwner(ctx context.Context, ownerID string) ([]domain.RecurringBill, error) {
	s.mu.RLock()
	bills := make([]domain.RecurringBill, 0)
	for _, b := range s.bills {
		if b.OwnerID == ownerID && !b.IsDeleted {
			bills = append(bills, cloneBill(b))
		}
	}
	s.mu.RUnlock()
	sortByDueDate(bills)
	return bills, nil
}

func (s *Store) ListDueRecurringBillIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	s.mu.RLock()
	due := make([]domain.RecurringBill, 0)
	for _, b := range s.bills {
		if b.DueOn(asOf) {
			due = append(due, b)
		}
	}
	s.mu.RUnlock()
	sortByDueDate(due)
	ids := make([]string, len(due))
	for i, b := range due {
		ids[i] = b.BillID
	}
	return ids, nil
}

func sortByDueDate(bills []domain.RecurringBill) {
	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].NextDueDate.Equal(bills[j].NextDueDate) {
			return bills[i].NextDueDate.Before(bills[j].NextDueDate)
		}
		return bills[i].BillID < bills[j].BillID
	})
}

func (s *Store) SaveRecurringBill(ctx context.Context, bill domain.RecurringBill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[bill.BillID]; ok {
		return duplicate("recurring bill", bill.BillID)
	}
	s.bills[bill.BillID] = cloneBill(bill)
	return nil
}

func (s *Store) SetRecurringBillActive(ctx context.Context, billID string, active bool, userID string, now time.Time) error {
	return s.updateBill(ctx, billID, func(b *domain.RecurringBill) {
		b.IsActive = active
		b.LastUpdatedAt = now
		b.LastUpdatedBy = userID
	})
}

func (s *Store) SoftDeleteRecurringBill(ctx context.Context, billID string, userID string, now time.Time) error {
	return s.updateBill(ctx, billID, func(b *domain.RecurringBill) {
		b.IsDeleted = true
		b.IsActive = false
		b.LastUpdatedAt = now
		b.LastUpdatedBy = userID
	})
}

func (s *Store) updateBill(ctx context.Context, billID string, mutate func(*domain.RecurringBill)) error {
	return s.withRowLock(ctx, billKey(billID), func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		b, ok := s.bills[billID]
		if !ok || b.IsDeleted {
			return notFound("recurring bill", billID)
		}
		mutate(&b)
		s.bills[billID] = b
		return nil
	})
}

func (tx *memTx) FindRecurringBillByIDForUpdate(ctx context.Context, billID string) (*domain.RecurringBill, error) {
	if err := tx.lock(ctx, billKey(billID)); err != nil {
		return nil, err
	}
	return tx.store.FindRecurringBillByID(ctx, billID)
}

func (tx *memTx) UpdateRecurringBillSchedule(ctx context.Context, bill domain.RecurringBill) error {
	return tx.write(func() (func(), error) {
		prev, ok := tx.store.bills[bill.BillID]
		if !ok {
			return nil, notFound("recurring bill", bill.BillID)
		}
		next := prev
		next.NextDueDate = bill.NextDueDate
		next.LastGeneratedDate = bill.LastGeneratedDate
		next.IsPaid = bill.IsPaid
		next.LastUpdatedAt = bill.LastUpdatedAt
		next.LastUpdatedBy = bill.LastUpdatedBy
		tx.store.bills[bill.BillID] = cloneBill(next)
		return func() { tx.store.bills[bill.BillID] = prev }, nil
	})
}
