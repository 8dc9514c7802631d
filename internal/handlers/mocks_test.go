package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}
func (m *MockLedgerService) ListSplits(ctx context.Context, transactionID string, userID string) ([]domain.TransactionSplit, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionSplit), args.Error(1)
}
func (m *MockLedgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	args := m.Called(ctx, transactionID, userID)
	return args.Error(0)
}
func (m *MockLedgerService) AddSplit(ctx context.Context, transactionID string, req dto.CreateSplitRequest, userID string) (*domain.TransactionSplit, error) {
	args := m.Called(ctx, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionSplit), args.Error(1)
}
func (m *MockLedgerService) PostInTx(ctx context.Context, tx portsrepo.LedgerTx, draft domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) AfterPost(ctx context.Context, txn domain.Transaction) {
	m.Called(ctx, txn)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock RecurringBillService ---
type MockRecurringBillService struct {
	mock.Mock
}

func (m *MockRecurringBillService) GetRecurringBill(ctx context.Context, billID string, userID string) (*domain.RecurringBill, error) {
	args := m.Called(ctx, billID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringBill), args.Error(1)
}
func (m *MockRecurringBillService) ListRecurringBills(ctx context.Context, userID string) ([]domain.RecurringBill, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringBill), args.Error(1)
}
func (m *MockRecurringBillService) ListUpcomingBills(ctx context.Context, userID string, days int) ([]domain.RecurringBill, error) {
	args := m.Called(ctx, userID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringBill), args.Error(1)
}
func (m *MockRecurringBillService) ListOverdueBills(ctx context.Context, userID string) ([]domain.RecurringBill, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringBill), args.Error(1)
}
func (m *MockRecurringBillService) CreateRecurringBill(ctx context.Context, req dto.CreateRecurringBillRequest, userID string) (*domain.RecurringBill, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringBill), args.Error(1)
}
func (m *MockRecurringBillService) DeactivateRecurringBill(ctx context.Context, billID string, userID string) error {
	return m.Called(ctx, billID, userID).Error(0)
}
func (m *MockRecurringBillService) DeleteRecurringBill(ctx context.Context, billID string, userID string) error {
	return m.Called(ctx, billID, userID).Error(0)
}
func (m *MockRecurringBillService) PayBill(ctx context.Context, billID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, billID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockRecurringBillService) SweepDueBills(ctx context.Context, asOf time.Time) (*domain.SweepReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepReport), args.Error(1)
}
func (m *MockRecurringBillService) GenerateOne(ctx context.Context, billID string) (*domain.GenerationResult, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerationResult), args.Error(1)
}

var _ portssvc.RecurringBillSvcFacade = (*MockRecurringBillService)(nil)
