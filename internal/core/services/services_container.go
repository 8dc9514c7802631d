package services

import (
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/platform/config"
)

// ExternalDeps are the outbound adapters the services talk to. Either may be nil:
// without a rate provider conversions only use stored rates, without a publisher
// notifications stay in-app.
type ExternalDeps struct {
	RateProvider   portssvc.RateProvider
	EmailPublisher portssvc.EmailPublisher
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, ext ExternalDeps) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	audit := NewAuditRecorder(repos.AuditRepo)

	var notificationOpts []NotificationOption
	if ext.EmailPublisher != nil {
		notificationOpts = append(notificationOpts, WithEmailPublisher(ext.EmailPublisher))
	}
	container.Notification = NewNotificationService(repos.NotificationRepo, notificationOpts...)

	// Budget comes before the ledger since every expense is checked against it
	container.Budget = NewBudgetService(
		repos.BudgetRepo,
		repos.TransactionRepo,
		WithBudgetNotifier(container.Notification, repos.NotificationRepo),
		WithBudgetAuditRecorder(audit),
	)

	container.Ledger = NewLedgerService(
		repos.TxManager,
		repos.AccountRepo,
		repos.TransactionRepo,
		WithLedgerAuditRecorder(audit),
		WithBudgetAlerter(container.Budget),
		WithLedgerRetryAttempts(cfg.TxRetryAttempts),
	)

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithCurrencyRepository(repos.CurrencyRepo),
		WithAccountAuditRecorder(audit),
	)

	container.Currency = NewCurrencyService(repos.CurrencyRepo)

	var rateOpts []ExchangeRateOption
	if ext.RateProvider != nil {
		rateOpts = append(rateOpts, WithRateProvider(ext.RateProvider))
	}
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, rateOpts...)

	container.RecurringBill = NewRecurringBillService(
		repos.TxManager,
		repos.RecurringBillRepo,
		repos.AccountRepo,
		container.Ledger,
		WithBillNotifier(container.Notification),
		WithBillAuditRecorder(audit),
		WithSweepConcurrency(cfg.SweepConcurrency),
		WithBillRetryAttempts(cfg.TxRetryAttempts),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.RecurringBillSvcFacade = (*recurringBillService)(nil)
	_ portssvc.CurrencySvcFacade      = (*currencyService)(nil)
	_ portssvc.EmailDeliverySvc       = (*emailDeliveryService)(nil)
)
