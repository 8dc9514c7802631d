package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/SscSPs/finance_ledger/internal/handlers"
	"github.com/SscSPs/finance_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "test-secret-key-that-is-long-enough"

// generateTestToken creates a signed JWT whose subject is userID.
func generateTestToken(t *testing.T, userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "finledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

func newAuthedRequest(t *testing.T, method, url, userID string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(t, userID))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newTestRouter() (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()
	r := gin.New()
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret))
	return r, v1
}

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	mockLedgerService  *MockLedgerService
	userID             string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	suite.mockAccountService = new(MockAccountService)
	suite.mockLedgerService = new(MockLedgerService)
	suite.userID = uuid.NewString()

	r, v1 := newTestRouter()
	handlers.RegisterAccountRoutes(v1, suite.mockAccountService, suite.mockLedgerService)
	suite.router = r
}

func (suite *AccountHandlerTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("CreateAccount",
		mock.Anything,
		mock.MatchedBy(func(r dto.CreateAccountRequest) bool {
			return r.Name == "Checking" && r.AccountType == domain.Bank &&
				r.CurrencyCode == "USD" && r.OpeningBalance.Equal(decimal.NewFromInt(250))
		}),
		suite.userID,
	).Return(&domain.Account{
		AccountID:    accountID,
		OwnerID:      suite.userID,
		Name:         "Checking",
		AccountType:  domain.Bank,
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(250),
		IsActive:     true,
	}, nil).Once()

	body := map[string]any{"name": "Checking", "accountType": "BANK", "currencyCode": "USD", "openingBalance": "250"}
	w := suite.serve(newAuthedRequest(suite.T(), http.MethodPost, "/api/v1/accounts", suite.userID, body))

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(accountID, resp.AccountID)
	suite.True(resp.Balance.Equal(decimal.NewFromInt(250)))
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidCurrencyCode() {
	body := map[string]any{"name": "Checking", "accountType": "BANK", "currencyCode": "US1"}
	w := suite.serve(newAuthedRequest(suite.T(), http.MethodPost, "/api/v1/accounts", suite.userID, body))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount")
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("GetAccountByID", mock.Anything, accountID, suite.userID).
		Return(nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)).Once()

	w := suite.serve(newAuthedRequest(suite.T(), http.MethodGet, "/api/v1/accounts/"+accountID, suite.userID, nil))

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_ConflictWhileLocked() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("DeactivateAccount", mock.Anything, accountID, suite.userID).
		Return(apperrors.ErrConcurrencyConflict).Once()

	w := suite.serve(newAuthedRequest(suite.T(), http.MethodDelete, "/api/v1/accounts/"+accountID, suite.userID, nil))

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestListTransactionsByAccount_Success() {
	accountID := uuid.NewString()
	limit := 10
	next := "opaque-token"

	expected := &dto.ListTransactionsResponse{
		Transactions: []dto.TransactionResponse{
			{TransactionID: uuid.NewString(), AccountID: accountID, TransactionType: domain.Expense, Amount: decimal.NewFromInt(100), CurrencyCode: "USD"},
			{TransactionID: uuid.NewString(), AccountID: accountID, TransactionType: domain.Income, Amount: decimal.NewFromInt(50), CurrencyCode: "USD"},
		},
		NextToken: &next,
	}

	suite.mockLedgerService.On("ListTransactionsByAccount",
		mock.Anything,
		accountID,
		suite.userID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool { return p.Limit == limit && p.NextToken == nil }),
	).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/accounts/%s/transactions?limit=%d", accountID, limit)
	w := suite.serve(newAuthedRequest(suite.T(), http.MethodGet, url, suite.userID, nil))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Transactions, 2)
	suite.Equal(expected.Transactions[0].TransactionID, resp.Transactions[0].TransactionID)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)

	suite.mockLedgerService.AssertExpectations(suite.T())
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts")
}

func (suite *AccountHandlerTestSuite) TestListTransactionsByAccount_LimitTooLarge() {
	url := fmt.Sprintf("/api/v1/accounts/%s/transactions?limit=500", uuid.NewString())
	w := suite.serve(newAuthedRequest(suite.T(), http.MethodGet, url, suite.userID, nil))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "ListTransactionsByAccount")
}

func (suite *AccountHandlerTestSuite) TestMissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts")
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
