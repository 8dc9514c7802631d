package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.store = NewStore()
	s.ctx = context.Background()
	for _, id := range []string{"acc-a", "acc-b"} {
		s.Require().NoError(s.store.SaveAccount(s.ctx, domain.Account{
			AccountID:    id,
			OwnerID:      "user-1",
			Name:         id,
			AccountType:  domain.Bank,
			CurrencyCode: "USD",
			Balance:      decimal.NewFromInt(100),
			IsActive:     true,
		}))
	}
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) balance(id string) decimal.Decimal {
	a, err := s.store.FindAccountByID(s.ctx, id)
	s.Require().NoError(err)
	return a.Balance
}

func (s *StoreTestSuite) TestRollbackRevertsEveryWrite() {
	boom := errors.New("boom")
	err := s.store.WithinTransaction(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.FindAccountsByIDsForUpdate(ctx, []string{"acc-b", "acc-a"}); err != nil {
			return err
		}
		if err := tx.SaveTransaction(ctx, domain.Transaction{TransactionID: "t-1", OwnerID: "user-1", AccountID: "acc-a"}); err != nil {
			return err
		}
		if err := tx.UpdateAccountBalances(ctx, map[string]decimal.Decimal{
			"acc-a": decimal.NewFromInt(-40),
			"acc-b": decimal.NewFromInt(40),
		}, "user-1", time.Now()); err != nil {
			return err
		}
		return boom
	})

	s.ErrorIs(err, boom)
	s.True(s.balance("acc-a").Equal(decimal.NewFromInt(100)))
	s.True(s.balance("acc-b").Equal(decimal.NewFromInt(100)))
	_, err = s.store.FindTransactionByID(s.ctx, "t-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestCommitKeepsWritesAndReleasesLocks() {
	err := s.store.WithinTransaction(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.FindAccountsByIDsForUpdate(ctx, []string{"acc-a"}); err != nil {
			return err
		}
		return tx.UpdateAccountBalances(ctx, map[string]decimal.Decimal{"acc-a": decimal.NewFromInt(-1)}, "user-1", time.Now())
	})
	s.Require().NoError(err)
	s.True(s.balance("acc-a").Equal(decimal.NewFromInt(99)))

	// the lock must be free again
	ctx, cancel := context.WithTimeout(s.ctx, time.Second)
	defer cancel()
	err = s.store.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.FindAccountsByIDsForUpdate(ctx, []string{"acc-a"})
		return err
	})
	s.NoError(err)
}

func (s *StoreTestSuite) TestLockWaitHonoursContext() {
	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.store.WithinTransaction(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			_, err := tx.FindAccountsByIDsForUpdate(ctx, []string{"acc-a"})
			close(held)
			<-done
			return err
		})
	}()
	<-held
	defer close(done)

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.FindAccountsByIDsForUpdate(ctx, []string{"acc-a"})
		return err
	})
	s.ErrorIs(err, apperrors.ErrConcurrencyConflict)
}

func (s *StoreTestSuite) TestOppositeLockRequestsDoNotDeadlock() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		ids := []string{"acc-a", "acc-b"}
		if i%2 == 1 {
			ids = []string{"acc-b", "acc-a"}
		}
		wg.Add(1)
		go func(ids []string) {
			defer wg.Done()
			err := s.store.WithinTransaction(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
				if _, err := tx.FindAccountsByIDsForUpdate(ctx, ids); err != nil {
					return err
				}
				return tx.UpdateAccountBalances(ctx, map[string]decimal.Decimal{
					ids[0]: decimal.NewFromInt(-1),
					ids[1]: decimal.NewFromInt(1),
				}, "user-1", time.Now())
			})
			assert.NoError(s.T(), err)
		}(ids)
	}
	wg.Wait()
	s.True(s.balance("acc-a").Equal(decimal.NewFromInt(100)))
	s.True(s.balance("acc-b").Equal(decimal.NewFromInt(100)))
}

func (s *StoreTestSuite) TestFindAccountsForUpdateMissing() {
	err := s.store.WithinTransaction(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, err := tx.FindAccountsByIDsForUpdate(ctx, []string{"acc-a", "nope"})
		return err
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestListTransactionsPaginates() {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	err := s.store.WithinTransaction(s.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for i, id := range []string{"t1", "t2", "t3", "t4", "t5"} {
			if err := tx.SaveTransaction(ctx, domain.Transaction{
				TransactionID:   id,
				OwnerID:         "user-1",
				AccountID:       "acc-a",
				TransactionType: domain.Income,
				Amount:          decimal.NewFromInt(1),
				TransactionDate: base.AddDate(0, 0, i),
				AuditFields:     domain.AuditFields{CreatedAt: base},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	page1, next, err := s.store.ListTransactionsByAccount(s.ctx, "user-1", "acc-a", 2, nil)
	s.Require().NoError(err)
	s.Require().NotNil(next)
	s.Equal([]string{"t5", "t4"}, ids(page1))

	page2, next, err := s.store.ListTransactionsByAccount(s.ctx, "user-1", "acc-a", 2, next)
	s.Require().NoError(err)
	s.Require().NotNil(next)
	s.Equal([]string{"t3", "t2"}, ids(page2))

	page3, next, err := s.store.ListTransactionsByAccount(s.ctx, "user-1", "acc-a", 2, next)
	s.Require().NoError(err)
	s.Nil(next)
	s.Equal([]string{"t1"}, ids(page3))

	bad := "%%%"
	_, _, err = s.store.ListTransactionsByAccount(s.ctx, "user-1", "acc-a", 2, &bad)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StoreTestSuite) TestUpsertExchangeRateOverwritesSameDay() {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.UpsertExchangeRate(s.ctx, domain.ExchangeRate{
		ExchangeRateID: "r1", FromCurrency: "USD", ToCurrency: "SOS", Rate: decimal.NewFromInt(570), RateDate: day,
	}))
	s.Require().NoError(s.store.UpsertExchangeRate(s.ctx, domain.ExchangeRate{
		ExchangeRateID: "r2", FromCurrency: "USD", ToCurrency: "SOS", Rate: decimal.NewFromInt(571), RateDate: day.Add(5 * time.Hour),
	}))

	rate, err := s.store.FindLatestExchangeRate(s.ctx, "USD", "SOS", day.AddDate(0, 0, 3))
	s.Require().NoError(err)
	s.Equal("r1", rate.ExchangeRateID)
	s.True(rate.Rate.Equal(decimal.NewFromInt(571)))

	_, err = s.store.FindLatestExchangeRate(s.ctx, "USD", "SOS", day.AddDate(0, 0, -1))
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestSaveBudgetNaturalKeyIsUnique() {
	b := domain.Budget{BudgetID: "b1", OwnerID: "user-1", Category: "Food", Month: 4, Year: 2024, Amount: decimal.NewFromInt(10)}
	s.Require().NoError(s.store.SaveBudget(s.ctx, b))
	b.BudgetID = "b2"
	s.ErrorIs(s.store.SaveBudget(s.ctx, b), apperrors.ErrDuplicate)
}

func ids(txns []domain.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.TransactionID
	}
	return out
}

func TestNewStoreSeedsCurrencies(t *testing.T) {
	s := NewStore()
	list, err := s.ListCurrencies(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "SOS", list[0].CurrencyCode)
	assert.Equal(t, "USD", list[1].CurrencyCode)
}
