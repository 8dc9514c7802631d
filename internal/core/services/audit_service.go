package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

type auditService struct {
	BaseService
	repo portsrepo.AuditWriter
}

// NewAuditRecorder creates an audit recorder backed by repo.
func NewAuditRecorder(repo portsrepo.AuditWriter) portssvc.AuditRecorder {
	return &auditService{repo: repo}
}

// Record never returns an error: losing an audit row must not undo a committed change.
func (s *auditService) Record(ctx context.Context, userID, table, recordID string, action domain.AuditAction, oldData, newData any) {
	entry := domain.AuditEntry{
		AuditID:   uuid.NewString(),
		UserID:    userID,
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		CreatedAt: s.Now(),
	}
	var err error
	if entry.OldData, err = marshalAuditData(oldData); err != nil {
		s.LogWarn(ctx, err, "Failed to encode audit data", slog.String("table", table), slog.String("record_id", recordID))
		return
	}
	if entry.NewData, err = marshalAuditData(newData); err != nil {
		s.LogWarn(ctx, err, "Failed to encode audit data", slog.String("table", table), slog.String("record_id", recordID))
		return
	}
	if err := s.repo.SaveAuditEntry(ctx, entry); err != nil {
		s.LogWarn(ctx, err, "Failed to write audit entry",
			slog.String("table", table),
			slog.String("record_id", recordID),
			slog.String("action", string(action)))
	}
}

func marshalAuditData(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
