package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contact = domain.UserContact{UserID: "u1", Email: "ada@example.com", Name: "Ada"}

func TestRenderer_AllKinds(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		tmpl domain.EmailTemplate
		want []string
	}{
		{domain.BudgetEmail{Category: "Food", Spent: decimal.NewFromInt(85), Limit: decimal.NewFromInt(100),
			Remaining: decimal.NewFromInt(15), Percentage: decimal.NewFromInt(85), Currency: "USD", Headline: "Budget Alert: Food"},
			[]string{"Budget Alert: Food", "85.00 USD", "100.00 USD", "15.00 USD"}},
		{domain.TransactionEmail{TransactionType: domain.Expense, Amount: decimal.RequireFromString("12.5"), Currency: "USD",
			Description: "Lunch", Date: due}, []string{"New transaction: Lunch", "12.50 USD", "Mar 1, 2024"}},
		{domain.BillEmail{BillName: "Rent", Amount: decimal.NewFromInt(1200), Currency: "USD", DueDate: due},
			[]string{"Recurring Bill Processed: Rent", "1200.00 USD", "Mar 1, 2024"}},
		{domain.GeneralEmail{Title: "Welcome", Body: "Glad you are here"}, []string{"Welcome", "Glad you are here"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tmpl.Kind()), func(t *testing.T) {
			html, err := r.Render(contact, tt.tmpl, "Something happened")
			require.NoError(t, err)
			assert.Contains(t, html, "Hi Ada,")
			assert.Contains(t, html, "Something happened")
			for _, w := range tt.want {
				assert.Contains(t, html, w)
			}
		})
	}
}

func TestRenderer_EscapesUserText(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	html, err := r.Render(contact, domain.GeneralEmail{Title: "Hi", Body: "<script>alert(1)</script>"}, "")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestResendSender_SendEmail(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	s, err := NewResendSender("re_test", "Finance Ledger <no-reply@example.com>", srv.URL, time.Second)
	require.NoError(t, err)

	err = s.SendEmail(context.Background(), contact, domain.GeneralEmail{Title: "Welcome", Body: "Hello"}, "msg")
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.Equal(t, "Welcome", got.Subject)
	assert.Equal(t, "Finance Ledger <no-reply@example.com>", got.From)
	assert.Contains(t, got.HTML, "Hello")
}

func TestResendSender_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnprocessableEntity, apperrors.ErrValidation},
		{http.StatusTooManyRequests, apperrors.ErrExternalServiceUnavailable},
		{http.StatusBadGateway, apperrors.ErrExternalServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			s, err := NewResendSender("re_test", "from@example.com", srv.URL, time.Second)
			require.NoError(t, err)

			err = s.SendEmail(context.Background(), contact, domain.GeneralEmail{Title: "x"}, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewResendSender_RequiresKey(t *testing.T) {
	_, err := NewResendSender("", "from@example.com", "", time.Second)
	assert.Error(t, err)
}
