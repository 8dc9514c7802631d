package repositories

import (
	"context"
)

// TransactionManager runs a unit of work inside a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise, so every
// write made through tx is all-or-nothing.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is the set of row-locking operations available inside a unit of work.
// Locks are held until the surrounding transaction ends. Callers acquire them in a
// fixed order (bill, then transaction, then accounts by ascending id).
type LedgerTx interface {
	AccountTransactionSupport
	TransactionTxSupport
	RecurringBillTxSupport
}
