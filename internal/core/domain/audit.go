package domain

import (
	"encoding/json"
	"time"
)

// AuditAction is the kind of mutation an audit entry records.
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditEntry is one row of the audit trail.
type AuditEntry struct {
	AuditID   string          `json:"auditID"`
	UserID    string          `json:"userID"`
	TableName string          `json:"tableName"`
	RecordID  string          `json:"recordID"`
	Action    AuditAction     `json:"action"`
	OldData   json.RawMessage `json:"oldData,omitempty"`
	NewData   json.RawMessage `json:"newData,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
