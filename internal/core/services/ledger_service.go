package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerService is the only component allowed to change account balances.
type ledgerService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	accountRepo   portsrepo.AccountReader
	txnRepo       portsrepo.TransactionReader
	audit         portssvc.AuditRecorder
	budgetAlerter portssvc.BudgetAlerter
	retryAttempts int
}

// LedgerOption is a functional option for configuring the ledger service
type LedgerOption func(*ledgerService)

// WithLedgerAuditRecorder adds the audit trail dependency
func WithLedgerAuditRecorder(audit portssvc.AuditRecorder) LedgerOption {
	return func(s *ledgerService) {
		s.audit = audit
	}
}

// WithBudgetAlerter makes recorded expenses trigger budget checks
func WithBudgetAlerter(alerter portssvc.BudgetAlerter) LedgerOption {
	return func(s *ledgerService) {
		s.budgetAlerter = alerter
	}
}

// WithLedgerRetryAttempts sets how many times a conflicting unit of work is attempted
func WithLedgerRetryAttempts(attempts int) LedgerOption {
	return func(s *ledgerService) {
		s.retryAttempts = attempts
	}
}

// WithLedgerClock overrides the time source
func WithLedgerClock(clock Clock) LedgerOption {
	return func(s *ledgerService) {
		s.clock = clock
	}
}

// NewLedgerService creates the ledger service.
func NewLedgerService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountReader,
	txnRepo portsrepo.TransactionReader,
	options ...LedgerOption,
) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txManager:     txManager,
		accountRepo:   accountRepo,
		txnRepo:       txnRepo,
		retryAttempts: defaultRetryAttempts,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	draft := domain.Transaction{
		OwnerID:         userID,
		AccountID:       req.AccountID,
		TargetAccountID: req.TargetAccountID,
		Category:        strings.TrimSpace(req.Category),
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: domain.DateOf(req.TransactionDate),
	}

	var created *domain.Transaction
	err := retryOnConflict(ctx, s.retryAttempts, func() error {
		return s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			posted, err := s.PostInTx(ctx, tx, draft)
			if err != nil {
				return err
			}
			created = posted
			return nil
		})
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to create transaction",
			slog.String("account_id", req.AccountID),
			slog.String("transaction_type", string(req.TransactionType)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", created.TransactionID),
		slog.String("account_id", created.AccountID),
		slog.String("amount", created.Amount.String()))
	s.AfterPost(ctx, *created)
	return created, nil
}

// PostInTx validates draft against the locked account rows and applies it.
func (s *ledgerService) PostInTx(ctx context.Context, tx portsrepo.LedgerTx, draft domain.Transaction) (*domain.Transaction, error) {
	if err := draft.ValidateShape(); err != nil {
		return nil, err
	}

	accounts, err := tx.FindAccountsByIDsForUpdate(ctx, lockOrder(draft.AccountIDs()))
	if err != nil {
		return nil, err
	}

	source, err := ownedUsableAccount(accounts, draft.AccountID, draft.OwnerID)
	if err != nil {
		return nil, err
	}
	if draft.CurrencyCode == "" {
		draft.CurrencyCode = source.CurrencyCode
	}
	if draft.CurrencyCode != source.CurrencyCode {
		return nil, fmt.Errorf("%w: transaction currency %s does not match account currency %s",
			apperrors.ErrCurrencyMismatch, draft.CurrencyCode, source.CurrencyCode)
	}

	switch draft.TransactionType {
	case domain.Expense:
		if source.AccountType == domain.Savings {
			return nil, fmt.Errorf("%w: expenses cannot be recorded against a savings account, transfer the money out first",
				apperrors.ErrInvalidAccountState)
		}
	case domain.Transfer:
		target, err := ownedUsableAccount(accounts, draft.TargetAccountID, draft.OwnerID)
		if err != nil {
			return nil, err
		}
		if target.CurrencyCode != source.CurrencyCode {
			return nil, fmt.Errorf("%w: cannot transfer %s into a %s account",
				apperrors.ErrCurrencyMismatch, source.CurrencyCode, target.CurrencyCode)
		}
		if source.AccountType == domain.Savings && target.AccountType == domain.Savings {
			return nil, fmt.Errorf("%w: transfers between savings accounts are not allowed", apperrors.ErrInvalidAccountState)
		}
	}

	changes := draft.BalanceChanges()
	if err := checkBalances(accounts, changes, draft.CurrencyCode); err != nil {
		return nil, err
	}

	now := s.Now()
	actor := draft.CreatedBy
	if actor == "" {
		actor = draft.OwnerID
	}
	draft.TransactionID = uuid.NewString()
	draft.IsDeleted = false
	draft.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor,
		LastUpdatedAt: now,
		LastUpdatedBy: actor,
	}

	if err := tx.SaveTransaction(ctx, draft); err != nil {
		return nil, err
	}
	if err := tx.UpdateAccountBalances(ctx, changes, actor, now); err != nil {
		return nil, err
	}
	return &draft, nil
}

// AfterPost records the audit entry and asks the budget evaluator to look at expenses.
func (s *ledgerService) AfterPost(ctx context.Context, txn domain.Transaction) {
	if s.audit != nil {
		s.audit.Record(ctx, txn.CreatedBy, "transactions", txn.TransactionID, domain.AuditCreate, nil, txn)
	}
	if s.budgetAlerter != nil && txn.TransactionType == domain.Expense && txn.Category != "" {
		s.budgetAlerter.OnExpenseRecorded(ctx, txn)
	}
}

func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	var deleted *domain.Transaction
	err := retryOnConflict(ctx, s.retryAttempts, func() error {
		return s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			txn, err := tx.FindTransactionByIDForUpdate(ctx, transactionID)
			if err != nil {
				return err
			}
			if txn.OwnerID != userID || txn.IsDeleted {
				return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
			}

			reversal := make(map[string]decimal.Decimal, 2)
			for accountID, delta := range txn.BalanceChanges() {
				reversal[accountID] = delta.Neg()
			}
			accounts, err := tx.FindAccountsByIDsForUpdate(ctx, lockOrder(txn.AccountIDs()))
			if err != nil {
				return err
			}
			if err := checkBalances(accounts, reversal, txn.CurrencyCode); err != nil {
				return err
			}

			now := s.Now()
			if err := tx.UpdateAccountBalances(ctx, reversal, userID, now); err != nil {
				return err
			}
			if err := tx.MarkTransactionDeleted(ctx, transactionID, userID, now); err != nil {
				return err
			}
			deleted = txn
			return nil
		})
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}

	s.LogInfo(ctx, "Transaction deleted and reversed", slog.String("transaction_id", transactionID))
	if s.audit != nil {
		s.audit.Record(ctx, userID, "transactions", transactionID, domain.AuditDelete, deleted, nil)
	}
	return nil
}

func (s *ledgerService) AddSplit(ctx context.Context, transactionID string, req dto.CreateSplitRequest, userID string) (*domain.TransactionSplit, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: split category is required", apperrors.ErrValidation)
	}
	if err := domain.ValidatePositiveAmount(req.Amount); err != nil {
		return nil, err
	}

	var split *domain.TransactionSplit
	err := retryOnConflict(ctx, s.retryAttempts, func() error {
		return s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			txn, err := tx.FindTransactionByIDForUpdate(ctx, transactionID)
			if err != nil {
				return err
			}
			if txn.OwnerID != userID || txn.IsDeleted {
				return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
			}

			allocated, err := tx.SumSplits(ctx, transactionID)
			if err != nil {
				return err
			}
			if allocated.Add(req.Amount).GreaterThan(txn.Amount) {
				return fmt.Errorf("%w: %s already allocated, %s requested, transaction total is %s",
					apperrors.ErrSplitExceedsTransaction, allocated.StringFixed(domain.MoneyScale),
					req.Amount.StringFixed(domain.MoneyScale), txn.Amount.StringFixed(domain.MoneyScale))
			}

			now := s.Now()
			candidate := domain.TransactionSplit{
				SplitID:       uuid.NewString(),
				TransactionID: transactionID,
				Category:      category,
				Amount:        req.Amount,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
			if err := tx.SaveSplit(ctx, candidate); err != nil {
				return err
			}
			split = &candidate
			return nil
		})
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to add split", slog.String("transaction_id", transactionID))
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, userID, "transaction_splits", split.SplitID, domain.AuditCreate, nil, split)
	}
	return split, nil
}

func (s *ledgerService) GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	if txn.OwnerID != userID || txn.IsDeleted {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return txn, nil
}

func (s *ledgerService) ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != userID || account.IsDeleted {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	txns, nextToken, err := s.txnRepo.ListTransactionsByAccount(ctx, userID, accountID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("account_id", accountID))
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

func (s *ledgerService) ListSplits(ctx context.Context, transactionID string, userID string) ([]domain.TransactionSplit, error) {
	if _, err := s.GetTransactionByID(ctx, transactionID, userID); err != nil {
		return nil, err
	}
	return s.txnRepo.ListSplitsByTransaction(ctx, transactionID)
}

// lockOrder returns ids sorted ascending. Every unit of work locks accounts in this
// order so two transfers in opposite directions cannot deadlock.
func lockOrder(ids []string) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return sorted
}

func ownedUsableAccount(accounts map[string]domain.Account, accountID, ownerID string) (domain.Account, error) {
	account, ok := accounts[accountID]
	if !ok || account.OwnerID != ownerID {
		return domain.Account{}, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if !account.Usable() {
		return domain.Account{}, fmt.Errorf("%w: account %s is inactive or deleted", apperrors.ErrInvalidAccountState, accountID)
	}
	return account, nil
}

// checkBalances rejects a set of deltas that would take any account below zero.
func checkBalances(accounts map[string]domain.Account, changes map[string]decimal.Decimal, currency string) error {
	for accountID, delta := range changes {
		account, ok := accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		balance := domain.NewMoney(account.Balance, account.CurrencyCode)
		next, err := balance.Add(domain.NewMoney(delta, currency))
		if err != nil {
			return err
		}
		if next.Amount.IsNegative() {
			return fmt.Errorf("%w: account %s has %s, needs %s",
				apperrors.ErrInsufficientFunds, accountID, balance.String(), domain.NewMoney(delta.Neg(), currency).String())
		}
	}
	return nil
}
