package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finance_ledger/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AuditRecorder ---
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, userID, table, recordID string, action domain.AuditAction, oldData, newData any) {
	m.Called(ctx, userID, table, recordID, action, oldData, newData)
}

// --- Mock NotificationSink ---
type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Notify(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

// --- Mock EmailPublisher ---
type MockEmailPublisher struct {
	mock.Mock
}

func (m *MockEmailPublisher) PublishEmail(ctx context.Context, n domain.Notification, tmpl domain.EmailTemplate) error {
	args := m.Called(ctx, n, tmpl)
	return args.Error(0)
}

// --- Mock EmailSender ---
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to domain.UserContact, tmpl domain.EmailTemplate, message string) error {
	args := m.Called(ctx, to, tmpl, message)
	return args.Error(0)
}

// --- Mock RateProvider ---
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) LookupRate(ctx context.Context, base, target string, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, base, target, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateProvider) FetchLatest(ctx context.Context, base string, targets []string) (*domain.FetchedRates, error) {
	args := m.Called(ctx, base, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FetchedRates), args.Error(1)
}

func (m *MockRateProvider) Name() string {
	return "mock"
}

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock AuditWriter ---
type MockAuditWriter struct {
	mock.Mock
}

func (m *MockAuditWriter) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// failingNotificationRepo wraps the memory store and fails SaveNotification.
type failingNotificationRepo struct {
	*memory.Store
	err error
}

func (r failingNotificationRepo) SaveNotification(ctx context.Context, n domain.Notification) error {
	return r.err
}

// failingBillRepo wraps the memory store and fails ListDueRecurringBillIDs.
type failingBillRepo struct {
	portsrepo.RecurringBillRepositoryFacade
	err error
}

func (r failingBillRepo) ListDueRecurringBillIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	return nil, r.err
}

// recordingSink is a NotificationSink that keeps every request, safe for concurrent use.
type recordingSink struct {
	mu       sync.Mutex
	requests []domain.NotificationRequest
}

func (r *recordingSink) Notify(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return &domain.Notification{OwnerID: req.OwnerID, NotificationType: req.Type, Message: req.Message, RelatedID: req.RelatedID}, nil
}

func (r *recordingSink) all() []domain.NotificationRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.NotificationRequest(nil), r.requests...)
}

// fixedClock returns a Clock pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedAccount(store *memory.Store, id, owner string, accountType domain.AccountType, currency, balance string) {
	if err := store.SaveAccount(context.Background(), domain.Account{
		AccountID:    id,
		OwnerID:      owner,
		Name:         id,
		AccountType:  accountType,
		CurrencyCode: currency,
		Balance:      dec(balance),
		IsActive:     true,
	}); err != nil {
		panic(err)
	}
}

func balanceOf(store *memory.Store, id string) decimal.Decimal {
	a, err := store.FindAccountByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return a.Balance
}
