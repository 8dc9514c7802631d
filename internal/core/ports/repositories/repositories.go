package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager         TransactionManager
	AccountRepo       AccountRepositoryFacade
	TransactionRepo   TransactionRepositoryFacade
	RecurringBillRepo RecurringBillRepositoryFacade
	BudgetRepo        BudgetRepositoryFacade
	NotificationRepo  NotificationRepositoryFacade
	UserContactRepo   UserContactReader
	CurrencyRepo      CurrencyRepositoryFacade
	ExchangeRateRepo  ExchangeRateRepositoryFacade
	AuditRepo         AuditWriter
}
