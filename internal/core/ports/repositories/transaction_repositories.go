package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for transactions and splits
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction, including soft-deleted ones.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves non-deleted transactions touching an account,
	// newest first, using token-based pagination.
	ListTransactionsByAccount(ctx context.Context, ownerID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListSplitsByTransaction retrieves all splits of a transaction.
	ListSplitsByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionSplit, error)

	// SumExpensesByCategory totals non-deleted EXPENSE transactions for an owner and
	// category whose transaction date falls in the given month.
	SumExpensesByCategory(ctx context.Context, ownerID, category string, month, year int) (decimal.Decimal, error)
}

// TransactionTxSupport defines transaction operations that run inside a unit of work
type TransactionTxSupport interface {
	// SaveTransaction inserts a new transaction row.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// FindTransactionByIDForUpdate selects and locks a transaction row.
	FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// MarkTransactionDeleted soft-deletes a transaction.
	MarkTransactionDeleted(ctx context.Context, transactionID string, userID string, now time.Time) error

	// SumSplits totals the splits already recorded for a transaction.
	SumSplits(ctx context.Context, transactionID string) (decimal.Decimal, error)

	// SaveSplit inserts a split. A second split with the same category returns ErrDuplicate.
	SaveSplit(ctx context.Context, split domain.TransactionSplit) error
}

// TransactionRepositoryFacade combines the transaction read interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
}
