package pgsql

import (
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	notificationRepo := newPgxNotificationRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:         &BaseRepository{Pool: dbPool, LockTimeout: defaultLockTimeout},
		AccountRepo:       newPgxAccountRepository(dbPool),
		TransactionRepo:   newPgxTransactionRepository(dbPool),
		RecurringBillRepo: newPgxRecurringBillRepository(dbPool),
		BudgetRepo:        newPgxBudgetRepository(dbPool),
		NotificationRepo:  notificationRepo,
		UserContactRepo:   notificationRepo,
		CurrencyRepo:      currencyRepo,
		ExchangeRateRepo:  currencyRepo,
		AuditRepo:         currencyRepo,
	}
}
