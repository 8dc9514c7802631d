package services

import (
	"context"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
)

// AuditRecorder appends to the audit trail. It never fails the caller.
type AuditRecorder interface {
	Record(ctx context.Context, userID, table, recordID string, action domain.AuditAction, oldData, newData any)
}
