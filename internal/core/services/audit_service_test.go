package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/core/services"
	"github.com/SscSPs/finance_ledger/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditRecorder_StoresJSONSnapshots(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := services.NewAuditRecorder(store)

	after := domain.Currency{CurrencyCode: "KES", Name: "Kenyan Shilling"}
	recorder.Record(ctx, owner, "currencies", "KES", domain.AuditCreate, nil, after)

	entries := store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditCreate, entries[0].Action)
	assert.Equal(t, "currencies", entries[0].TableName)
	assert.Nil(t, entries[0].OldData)
	assert.JSONEq(t, `{"currencyCode":"KES","symbol":"","name":"Kenyan Shilling","isActive":false,
		"createdAt":"0001-01-01T00:00:00Z","createdBy":"","lastUpdatedAt":"0001-01-01T00:00:00Z","lastUpdatedBy":""}`,
		string(entries[0].NewData))
}

func TestAuditRecorder_WriteFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	writer := new(MockAuditWriter)
	writer.On("SaveAuditEntry", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.RecordID == "acc-1" && e.Action == domain.AuditDelete
	})).Return(assert.AnError).Once()

	recorder := services.NewAuditRecorder(writer)

	assert.NotPanics(t, func() {
		recorder.Record(ctx, owner, "accounts", "acc-1", domain.AuditDelete, map[string]string{"name": "old"}, nil)
	})
	writer.AssertExpectations(t)
}

func TestAuditRecorder_UnencodableDataSkipsWrite(t *testing.T) {
	writer := new(MockAuditWriter)
	recorder := services.NewAuditRecorder(writer)

	recorder.Record(context.Background(), owner, "accounts", "acc-1", domain.AuditUpdate, nil, make(chan int))

	writer.AssertNotCalled(t, "SaveAuditEntry", mock.Anything, mock.Anything)
}
