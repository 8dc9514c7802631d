package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/core/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/SscSPs/finance_ledger/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RecurringBillServiceTestSuite struct {
	suite.Suite
	store  *memory.Store
	sink   *recordingSink
	ledger portssvc.LedgerSvcFacade
	bills  portssvc.RecurringBillSvcFacade
	ctx    context.Context
	today  time.Time
}

func (suite *RecurringBillServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.today = time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	suite.store = memory.NewStore()
	suite.sink = &recordingSink{}
	suite.ledger = services.NewLedgerService(suite.store, suite.store, suite.store, services.WithLedgerClock(fixedClock(suite.today)))
	suite.bills = suite.newBillService(suite.sink)

	seedAccount(suite.store, "checking", owner, domain.Bank, "USD", "100.00")
	seedAccount(suite.store, "wallet", owner, domain.Cash, "USD", "0.00")
}

func (suite *RecurringBillServiceTestSuite) newBillService(notifier portssvc.NotificationSink) portssvc.RecurringBillSvcFacade {
	return services.NewRecurringBillService(suite.store, suite.store, suite.store, suite.ledger,
		services.WithBillNotifier(notifier),
		services.WithSweepConcurrency(4),
		services.WithBillClock(fixedClock(suite.today)),
	)
}

func TestRecurringBillService(t *testing.T) {
	suite.Run(t, new(RecurringBillServiceTestSuite))
}

func (suite *RecurringBillServiceTestSuite) createBill(account, name, amount string, start time.Time) *domain.RecurringBill {
	bill, err := suite.bills.CreateRecurringBill(suite.ctx, dto.CreateRecurringBillRequest{
		AccountID:       account,
		Category:        "Housing",
		Name:            name,
		Amount:          dec(amount),
		TransactionType: domain.Expense,
		Frequency:       domain.Monthly,
		StartDate:       start,
	}, owner)
	suite.Require().NoError(err)
	return bill
}

func (suite *RecurringBillServiceTestSuite) TestGenerateOne_PostsAndAdvances() {
	bill := suite.createBill("checking", "Rent", "20.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	result, err := suite.bills.GenerateOne(suite.ctx, bill.BillID)

	suite.Require().NoError(err)
	suite.Equal(domain.OutcomeGenerated, result.Outcome)
	suite.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), result.NextDueDate)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("80.00")))

	txn, err := suite.ledger.GetTransactionByID(suite.ctx, result.TransactionID, owner)
	suite.Require().NoError(err)
	suite.Equal("[Auto] Rent", txn.Description)
	suite.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), txn.TransactionDate)
	suite.True(txn.IsRecurring)
	suite.Equal(bill.BillID, txn.RecurringBillID)
	suite.Equal(services.SystemActor, txn.CreatedBy)

	stored, err := suite.bills.GetRecurringBill(suite.ctx, bill.BillID, owner)
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.LastGeneratedDate)
	suite.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *stored.LastGeneratedDate)

	sent := suite.sink.all()
	suite.Require().Len(sent, 1)
	suite.Equal(domain.NotificationRecurringBill, sent[0].Type)
	suite.Equal("Recurring bill 'Rent' of 20.00 USD has been processed.", sent[0].Message)
	email, ok := sent[0].Email.(domain.BillEmail)
	suite.Require().True(ok)
	suite.Equal(result.TransactionID, email.TransactionID)

	again, err := suite.bills.GenerateOne(suite.ctx, bill.BillID)
	suite.Require().NoError(err)
	suite.Equal(domain.OutcomeSkipped, again.Outcome)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("80.00")))
}

func (suite *RecurringBillServiceTestSuite) TestGenerateOne_ConcurrentCallsGenerateOnce() {
	bill := suite.createBill("checking", "Rent", "20.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	var mu sync.Mutex
	outcomes := map[domain.GenerationOutcome]int{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := suite.bills.GenerateOne(suite.ctx, bill.BillID)
			assert.NoError(suite.T(), err)
			if result != nil {
				mu.Lock()
				outcomes[result.Outcome]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, outcomes[domain.OutcomeGenerated])
	suite.Equal(19, outcomes[domain.OutcomeSkipped])
	suite.True(balanceOf(suite.store, "checking").Equal(dec("80.00")))
}

func (suite *RecurringBillServiceTestSuite) TestSweep_TwiceOnSameDayIsIdempotent() {
	suite.createBill("checking", "Rent", "20.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	suite.createBill("checking", "Gym", "10.00", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	suite.createBill("checking", "Future", "10.00", time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))

	first, err := suite.bills.SweepDueBills(suite.ctx, suite.today)
	suite.Require().NoError(err)
	suite.Equal(2, first.Selected)
	suite.Equal(2, first.Generated)

	second, err := suite.bills.SweepDueBills(suite.ctx, suite.today)
	suite.Require().NoError(err)
	suite.Equal(0, second.Selected)
	suite.Equal(0, second.Generated)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("70.00")))
}

func (suite *RecurringBillServiceTestSuite) TestSweep_FailureIsolatedPerBill() {
	good := suite.createBill("checking", "Rent", "20.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	broke := suite.createBill("wallet", "Phone", "15.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	report, err := suite.bills.SweepDueBills(suite.ctx, suite.today)

	suite.Require().NoError(err)
	suite.Equal(2, report.Selected)
	suite.Equal(1, report.Generated)
	suite.Equal(1, report.Failed)

	stillDue, err := suite.bills.GetRecurringBill(suite.ctx, broke.BillID, owner)
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), stillDue.NextDueDate, "failed bill keeps its schedule")
	suite.Nil(stillDue.LastGeneratedDate)

	advanced, err := suite.bills.GetRecurringBill(suite.ctx, good.BillID, owner)
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), advanced.NextDueDate)
}

func (suite *RecurringBillServiceTestSuite) TestSweep_SelectionError() {
	svc := services.NewRecurringBillService(suite.store, failingBillRepo{RecurringBillRepositoryFacade: suite.store, err: assert.AnError}, suite.store, suite.ledger)

	report, err := svc.SweepDueBills(suite.ctx, suite.today)

	suite.ErrorIs(err, assert.AnError)
	suite.Nil(report)
}

func (suite *RecurringBillServiceTestSuite) TestGenerateOne_UnknownFrequencyIsFatal() {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.store.SaveRecurringBill(suite.ctx, domain.RecurringBill{
		BillID:          "bad-bill",
		OwnerID:         owner,
		AccountID:       "checking",
		Name:            "Broken",
		Amount:          dec("5.00"),
		CurrencyCode:    "USD",
		TransactionType: domain.Expense,
		Frequency:       domain.Frequency("FORTNIGHTLY"),
		StartDate:       start,
		NextDueDate:     start,
		IsActive:        true,
	}))

	_, err := suite.bills.GenerateOne(suite.ctx, "bad-bill")

	suite.ErrorIs(err, apperrors.ErrConfiguration)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("100.00")))
	stored, err := suite.store.FindRecurringBillByID(suite.ctx, "bad-bill")
	suite.Require().NoError(err)
	suite.Equal(start, stored.NextDueDate)
}

func (suite *RecurringBillServiceTestSuite) TestGenerateOne_NotificationFailureIsSwallowed() {
	notifier := new(MockNotificationSink)
	notifier.On("Notify", mock.Anything, mock.AnythingOfType("domain.NotificationRequest")).Return(nil, assert.AnError).Once()
	svc := suite.newBillService(notifier)
	bill := suite.createBill("checking", "Rent", "20.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	result, err := svc.GenerateOne(suite.ctx, bill.BillID)

	suite.Require().NoError(err)
	suite.Equal(domain.OutcomeGenerated, result.Outcome)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("80.00")))
	notifier.AssertExpectations(suite.T())
}

func (suite *RecurringBillServiceTestSuite) TestPayBill_ThenGenerateOnlyAdvances() {
	bill := suite.createBill("checking", "Rent", "20.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	payment, err := suite.bills.PayBill(suite.ctx, bill.BillID, owner)
	suite.Require().NoError(err)
	suite.Equal("Payment for Rent", payment.Description)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("80.00")))

	_, err = suite.bills.PayBill(suite.ctx, bill.BillID, owner)
	suite.ErrorIs(err, apperrors.ErrValidation)

	result, err := suite.bills.GenerateOne(suite.ctx, bill.BillID)
	suite.Require().NoError(err)
	suite.Equal(domain.OutcomeAdvanced, result.Outcome)
	suite.Empty(result.TransactionID)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("80.00")))

	stored, err := suite.bills.GetRecurringBill(suite.ctx, bill.BillID, owner)
	suite.Require().NoError(err)
	suite.False(stored.IsPaid)
	suite.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), stored.NextDueDate)
}

func (suite *RecurringBillServiceTestSuite) TestGenerateOne_PastEndDateSkips() {
	end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	bill, err := suite.bills.CreateRecurringBill(suite.ctx, dto.CreateRecurringBillRequest{
		AccountID:       "checking",
		Name:            "Ended",
		Amount:          dec("5.00"),
		TransactionType: domain.Expense,
		Frequency:       domain.Monthly,
		StartDate:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         &end,
	}, owner)
	suite.Require().NoError(err)
	_, err = suite.bills.GenerateOne(suite.ctx, bill.BillID)
	suite.Require().NoError(err)

	result, err := suite.bills.GenerateOne(suite.ctx, bill.BillID)

	suite.Require().NoError(err)
	suite.Equal(domain.OutcomeSkipped, result.Outcome)
	suite.True(balanceOf(suite.store, "checking").Equal(dec("95.00")))
}

func (suite *RecurringBillServiceTestSuite) TestDeactivatedBillIsNotSwept() {
	bill := suite.createBill("checking", "Rent", "20.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(suite.bills.DeactivateRecurringBill(suite.ctx, bill.BillID, owner))

	report, err := suite.bills.SweepDueBills(suite.ctx, suite.today)

	suite.Require().NoError(err)
	suite.Equal(0, report.Selected)
}

func (suite *RecurringBillServiceTestSuite) TestUpcomingAndOverdue() {
	suite.createBill("checking", "Overdue", "1.00", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	suite.createBill("checking", "Soon", "1.00", time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	suite.createBill("checking", "Later", "1.00", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))

	upcoming, err := suite.bills.ListUpcomingBills(suite.ctx, owner, 7)
	suite.Require().NoError(err)
	suite.Require().Len(upcoming, 1)
	suite.Equal("Soon", upcoming[0].Name)

	overdue, err := suite.bills.ListOverdueBills(suite.ctx, owner)
	suite.Require().NoError(err)
	suite.Require().Len(overdue, 1)
	suite.Equal("Overdue", overdue[0].Name)
}

func (suite *RecurringBillServiceTestSuite) TestCreateRecurringBill_Validation() {
	base := dto.CreateRecurringBillRequest{
		AccountID:       "checking",
		Name:            "Bill",
		Amount:          dec("5.00"),
		TransactionType: domain.Expense,
		Frequency:       domain.Weekly,
		StartDate:       suite.today,
	}

	transfer := base
	transfer.TransactionType = domain.Transfer
	_, err := suite.bills.CreateRecurringBill(suite.ctx, transfer, owner)
	suite.ErrorIs(err, apperrors.ErrValidation)

	badFreq := base
	badFreq.Frequency = "HOURLY"
	_, err = suite.bills.CreateRecurringBill(suite.ctx, badFreq, owner)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.bills.CreateRecurringBill(suite.ctx, base, "user-2")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}
