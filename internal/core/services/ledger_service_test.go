package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/core/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/SscSPs/finance_ledger/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const owner = "user-1"

type LedgerServiceTestSuite struct {
	suite.Suite
	store  *memory.Store
	audit  *MockAuditRecorder
	ledger portssvc.LedgerSvcFacade
	ctx    context.Context
	today  time.Time
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.today = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	suite.store = memory.NewStore()
	suite.audit = new(MockAuditRecorder)
	suite.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	suite.ledger = services.NewLedgerService(suite.store, suite.store, suite.store,
		services.WithLedgerAuditRecorder(suite.audit),
		services.WithLedgerClock(fixedClock(suite.today)),
	)

	seedAccount(suite.store, "checking", owner, domain.Bank, "USD", "100.00")
	seedAccount(suite.store, "wallet", owner, domain.Cash, "USD", "0.00")
	seedAccount(suite.store, "savings", owner, domain.Savings, "USD", "500.00")
	seedAccount(suite.store, "shillings", owner, domain.Bank, "SOS", "1000.00")
	seedAccount(suite.store, "theirs", "user-2", domain.Bank, "USD", "100.00")
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (suite *LedgerServiceTestSuite) request(account string, txType domain.TransactionType, amount string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		AccountID:       account,
		TransactionType: txType,
		Amount:          dec(amount),
		Category:        "General",
		TransactionDate: suite.today,
		Description:     "test",
	}
}

func (suite *LedgerServiceTestSuite) TestCreateExpense_DebitsBalance() {
	txn, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("checking", domain.Expense, "30.25"), owner)

	suite.Require().NoError(err)
	suite.Equal("USD", txn.CurrencyCode)
	suite.Equal(domain.DateOf(suite.today), txn.TransactionDate)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("69.75")))
	suite.audit.AssertCalled(suite.T(), "Record", mock.Anything, owner, "transactions", txn.TransactionID, domain.AuditCreate, nil, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateExpense_InsufficientFunds() {
	_, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("checking", domain.Expense, "100.01"), owner)

	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("100.00")))
}

func (suite *LedgerServiceTestSuite) TestCreateExpense_SavingsRejected() {
	_, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("savings", domain.Expense, "1.00"), owner)

	suite.ErrorIs(err, apperrors.ErrInvalidAccountState)
	suite.True(balanceOf(suite.store, "savings").Equal(dec("500.00")))
}

func (suite *LedgerServiceTestSuite) TestCreateTransaction_RejectsBadInput() {
	cases := []struct {
		name    string
		req     dto.CreateTransactionRequest
		wantErr error
	}{
		{"three decimals", suite.request("checking", domain.Income, "1.005"), apperrors.ErrValidation},
		{"zero amount", suite.request("checking", domain.Income, "0"), apperrors.ErrValidation},
		{"someone else's account", suite.request("theirs", domain.Income, "1.00"), apperrors.ErrNotFound},
		{"unknown account", suite.request("missing", domain.Income, "1.00"), apperrors.ErrNotFound},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.ledger.CreateTransaction(suite.ctx, tc.req, owner)
			suite.ErrorIs(err, tc.wantErr)
		})
	}
}

func (suite *LedgerServiceTestSuite) TestTransfer_MovesMoney() {
	req := suite.request("savings", domain.Transfer, "120.00")
	req.TargetAccountID = "checking"

	_, err := suite.ledger.CreateTransaction(suite.ctx, req, owner)

	suite.Require().NoError(err)
	suite.True(balanceOf(suite.store, "savings").Equal(dec("380.00")))
	suite.True(balanceOf(suite.store, "checking").Equal(dec("220.00")))
}

func (suite *LedgerServiceTestSuite) TestTransfer_CurrencyMismatch() {
	req := suite.request("checking", domain.Transfer, "10.00")
	req.TargetAccountID = "shillings"

	_, err := suite.ledger.CreateTransaction(suite.ctx, req, owner)

	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("100.00")))
	suite.True(balanceOf(suite.store, "shillings").Equal(dec("1000.00")))
}

func (suite *LedgerServiceTestSuite) TestTransfer_InactiveTarget() {
	suite.Require().NoError(suite.store.DeactivateAccount(suite.ctx, "wallet", owner, suite.today))
	req := suite.request("checking", domain.Transfer, "10.00")
	req.TargetAccountID = "wallet"

	_, err := suite.ledger.CreateTransaction(suite.ctx, req, owner)

	suite.ErrorIs(err, apperrors.ErrInvalidAccountState)
}

func (suite *LedgerServiceTestSuite) TestConcurrentExpenses_NeverOverdraw() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("checking", domain.Expense, "5.00"), owner)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrInsufficientFunds):
				rejected++
			default:
				suite.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	suite.Equal(20, succeeded)
	suite.Equal(30, rejected)
	suite.True(balanceOf(suite.store, "checking").IsZero())
}

func (suite *LedgerServiceTestSuite) TestConcurrentOppositeTransfers_DoNotDeadlock() {
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		from, to := "checking", "wallet"
		if i%2 == 1 {
			from, to = "wallet", "checking"
		}
		wg.Add(1)
		go func(from, to string) {
			defer wg.Done()
			req := suite.request(from, domain.Transfer, "1.00")
			req.TargetAccountID = to
			_, _ = suite.ledger.CreateTransaction(suite.ctx, req, owner)
		}(from, to)
	}
	wg.Wait()

	total := balanceOf(suite.store, "checking").Add(balanceOf(suite.store, "wallet"))
	suite.True(total.Equal(dec("100.00")), "transfers must conserve money, got %s", total)
	suite.False(balanceOf(suite.store, "wallet").IsNegative())
}

func (suite *LedgerServiceTestSuite) TestManyOperations_NoDrift() {
	expected := dec("100.00")
	for i := 0; i < 10000; i++ {
		txType, amount := domain.Income, dec("0.03")
		if i%3 == 0 {
			txType, amount = domain.Expense, dec("0.07")
		}
		_, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("checking", txType, amount.StringFixed(2)), owner)
		suite.Require().NoError(err, "operation %d", i)
		if txType == domain.Income {
			expected = expected.Add(amount)
		} else {
			expected = expected.Sub(amount)
		}
	}
	suite.True(balanceOf(suite.store, "checking").Equal(expected), "want %s got %s", expected, balanceOf(suite.store, "checking"))
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_ReversesBalance() {
	req := suite.request("savings", domain.Transfer, "50.00")
	req.TargetAccountID = "checking"
	txn, err := suite.ledger.CreateTransaction(suite.ctx, req, owner)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.ledger.DeleteTransaction(suite.ctx, txn.TransactionID, owner))

	suite.True(balanceOf(suite.store, "savings").Equal(dec("500.00")))
	suite.True(balanceOf(suite.store, "checking").Equal(dec("100.00")))
	_, err = suite.ledger.GetTransactionByID(suite.ctx, txn.TransactionID, owner)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	err = suite.ledger.DeleteTransaction(suite.ctx, txn.TransactionID, owner)
	suite.ErrorIs(err, apperrors.ErrNotFound, "deleting twice must not reverse twice")
	suite.True(balanceOf(suite.store, "checking").Equal(dec("100.00")))
}

func (suite *LedgerServiceTestSuite) TestDeleteIncome_AlreadySpent() {
	income, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("wallet", domain.Income, "40.00"), owner)
	suite.Require().NoError(err)
	_, err = suite.ledger.CreateTransaction(suite.ctx, suite.request("wallet", domain.Expense, "30.00"), owner)
	suite.Require().NoError(err)

	err = suite.ledger.DeleteTransaction(suite.ctx, income.TransactionID, owner)

	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.True(balanceOf(suite.store, "wallet").Equal(dec("10.00")))
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_OtherOwner() {
	txn, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("checking", domain.Income, "1.00"), owner)
	suite.Require().NoError(err)

	err = suite.ledger.DeleteTransaction(suite.ctx, txn.TransactionID, "user-2")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestSplits_CannotExceedTransaction() {
	txn, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("checking", domain.Expense, "100.00"), owner)
	suite.Require().NoError(err)

	_, err = suite.ledger.AddSplit(suite.ctx, txn.TransactionID, dto.CreateSplitRequest{Category: "Food", Amount: dec("60.00")}, owner)
	suite.Require().NoError(err)
	_, err = suite.ledger.AddSplit(suite.ctx, txn.TransactionID, dto.CreateSplitRequest{Category: "Fuel", Amount: dec("40.00")}, owner)
	suite.Require().NoError(err)

	_, err = suite.ledger.AddSplit(suite.ctx, txn.TransactionID, dto.CreateSplitRequest{Category: "Misc", Amount: dec("0.01")}, owner)
	suite.ErrorIs(err, apperrors.ErrSplitExceedsTransaction)

	splits, err := suite.ledger.ListSplits(suite.ctx, txn.TransactionID, owner)
	suite.Require().NoError(err)
	suite.Len(splits, 2)
	suite.True(balanceOf(suite.store, "checking").IsZero(), "splits must not touch balances")
}

func (suite *LedgerServiceTestSuite) TestSplits_DuplicateCategory() {
	txn, err := suite.ledger.CreateTransaction(suite.ctx, suite.request("checking", domain.Expense, "10.00"), owner)
	suite.Require().NoError(err)
	_, err = suite.ledger.AddSplit(suite.ctx, txn.TransactionID, dto.CreateSplitRequest{Category: "Food", Amount: dec("1.00")}, owner)
	suite.Require().NoError(err)

	_, err = suite.ledger.AddSplit(suite.ctx, txn.TransactionID, dto.CreateSplitRequest{Category: "Food", Amount: dec("1.00")}, owner)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *LedgerServiceTestSuite) TestListTransactionsByAccount_Paginates() {
	for i := 0; i < 5; i++ {
		req := suite.request("checking", domain.Income, fmt.Sprintf("%d.00", i+1))
		req.TransactionDate = suite.today.AddDate(0, 0, -i)
		_, err := suite.ledger.CreateTransaction(suite.ctx, req, owner)
		suite.Require().NoError(err)
	}

	page, err := suite.ledger.ListTransactionsByAccount(suite.ctx, "checking", owner, dto.ListTransactionsParams{Limit: 3})
	suite.Require().NoError(err)
	suite.Len(page.Transactions, 3)
	suite.Require().NotNil(page.NextToken)
	suite.True(page.Transactions[0].Amount.Equal(decimal.NewFromInt(1)), "newest first")

	rest, err := suite.ledger.ListTransactionsByAccount(suite.ctx, "checking", owner, dto.ListTransactionsParams{Limit: 3, NextToken: page.NextToken})
	suite.Require().NoError(err)
	suite.Len(rest.Transactions, 2)
	suite.Nil(rest.NextToken)

	_, err = suite.ledger.ListTransactionsByAccount(suite.ctx, "theirs", owner, dto.ListTransactionsParams{})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}
