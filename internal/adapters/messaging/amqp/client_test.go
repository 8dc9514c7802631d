package amqp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	published []amqp091.Publishing
	keys      []string
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return nil, errors.New("not supported")
}

func (f *fakeChannel) Close() error { return nil }

// fakeAck records how a delivery was settled.
type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *fakeAck) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func TestEmailJob_RoundTripPerKind(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	templates := []domain.EmailTemplate{
		domain.BudgetEmail{BudgetID: "b1", Category: "Food", Spent: decimal.NewFromInt(85), Limit: decimal.NewFromInt(100),
			Remaining: decimal.NewFromInt(15), Percentage: decimal.NewFromInt(85), Currency: "USD", Headline: "Budget Alert: Food"},
		domain.TransactionEmail{TransactionID: "t1", TransactionType: domain.Expense, Amount: decimal.RequireFromString("12.50"),
			Currency: "USD", Description: "Lunch", Date: due},
		domain.BillEmail{BillID: "r1", BillName: "Rent", Amount: decimal.NewFromInt(1200), Currency: "USD", DueDate: due, TransactionID: "t2"},
		domain.GeneralEmail{Title: "Welcome", Body: "Hello"},
	}

	for _, tmpl := range templates {
		t.Run(string(tmpl.Kind()), func(t *testing.T) {
			n := domain.Notification{NotificationID: "n-" + string(tmpl.Kind()), OwnerID: "u1", Message: "msg"}
			job, err := NewEmailJob(n, tmpl)
			require.NoError(t, err)

			body, err := job.ToJSON()
			require.NoError(t, err)

			decoded, err := EmailJobFromJSON(body)
			require.NoError(t, err)
			assert.Equal(t, n.NotificationID, decoded.Notification.NotificationID)
			assert.Equal(t, tmpl.Kind(), decoded.Template().Kind())
			assert.Equal(t, tmpl.Subject(), decoded.Template().Subject())
			assert.IsType(t, tmpl, decoded.Template())
		})
	}
}

func TestEmailJobFromJSON_UnknownKind(t *testing.T) {
	_, err := EmailJobFromJSON([]byte(`{"notification":{"notificationID":"n1"},"kind":"sms","payload":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown email kind "sms"`)
}

func TestNewEmailJob_NilTemplate(t *testing.T) {
	_, err := NewEmailJob(domain.Notification{NotificationID: "n1"}, nil)
	assert.Error(t, err)
}

func TestClient_PublishEmail(t *testing.T) {
	ch := &fakeChannel{}
	client := &Client{channel: ch, exchangeName: "finledger", queueName: "finledger.emails"}

	n := domain.Notification{NotificationID: "n1", OwnerID: "u1"}
	err := client.PublishEmail(context.Background(), n, domain.GeneralEmail{Title: "Hi", Body: "There"})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "finledger.emails", ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, "n1", msg.MessageId)

	job, err := EmailJobFromJSON(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, domain.EmailGeneral, job.Kind)
}

func TestClient_PublishEmail_ChannelError(t *testing.T) {
	client := &Client{channel: &fakeChannel{err: errors.New("channel closed")}, exchangeName: "x", queueName: "q"}

	err := client.PublishEmail(context.Background(), domain.Notification{NotificationID: "n1"}, domain.GeneralEmail{Title: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish message")
}

func TestHandleDelivery(t *testing.T) {
	job, err := NewEmailJob(domain.Notification{NotificationID: "n1"}, domain.GeneralEmail{Title: "Hi"})
	require.NoError(t, err)
	valid, err := job.ToJSON()
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        []byte
		handlerErr  error
		wantAck     bool
		wantRequeue bool
		wantCalled  bool
	}{
		{name: "success acks", body: valid, wantAck: true, wantCalled: true},
		{name: "bad json is dropped", body: []byte("{not json"), wantCalled: false},
		{name: "transient failure is requeued", body: valid, handlerErr: errors.New("resend: 502"), wantRequeue: true, wantCalled: true},
		{name: "invalid job is dropped", body: valid, handlerErr: fmt.Errorf("%w: no e-mail address", apperrors.ErrValidation), wantCalled: true},
		{name: "missing user is dropped", body: valid, handlerErr: fmt.Errorf("%w: user u1", apperrors.ErrNotFound), wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			called := false
			handler := func(_ context.Context, j *EmailJob) error {
				called = true
				assert.Equal(t, "n1", j.Notification.NotificationID)
				return tt.handlerErr
			}

			handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: tt.body}, handler)

			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, !tt.wantAck, ack.nacked)
			assert.Equal(t, tt.wantRequeue, ack.requeued)
		})
	}
}
