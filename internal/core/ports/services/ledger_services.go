package services

import (
	"context"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finance_ledger/internal/dto"
)

// LedgerReaderSvc defines read operations over transactions and splits
type LedgerReaderSvc interface {
	GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
	ListSplits(ctx context.Context, transactionID string, userID string) ([]domain.TransactionSplit, error)
}

// LedgerWriterSvc defines the balance-mutating ledger operations
type LedgerWriterSvc interface {
	// CreateTransaction validates and records a transaction, applying its balance effect atomically.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// DeleteTransaction soft-deletes a transaction and reverses its balance effect atomically.
	DeleteTransaction(ctx context.Context, transactionID string, userID string) error

	// AddSplit allocates part of a transaction to a category. Splits never change balances.
	AddSplit(ctx context.Context, transactionID string, req dto.CreateSplitRequest, userID string) (*domain.TransactionSplit, error)
}

// LedgerPoster lets other services post a transaction as part of their own unit of work.
type LedgerPoster interface {
	// PostInTx applies draft inside tx. It locks the involved accounts, enforces every
	// ledger rule and returns the stored transaction. Nothing is visible until tx commits.
	PostInTx(ctx context.Context, tx portsrepo.LedgerTx, draft domain.Transaction) (*domain.Transaction, error)

	// AfterPost runs the post-commit side effects (audit, budget checks) for txn.
	AfterPost(ctx context.Context, txn domain.Transaction)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerPoster
}
