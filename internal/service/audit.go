package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
)

// AuditRepositoryInterface persists audit rows.
type AuditRepositoryInterface interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByRecord(ctx context.Context, tableName string, recordID int64) ([]*domain.AuditEntry, error)
}

// newAuditEntry stamps an audit row with the request ID carried by ctx.
func newAuditEntry(ctx context.Context, action, table string, recordID int64, oldValues, newValues map[string]any, now time.Time) *domain.AuditEntry {
	return &domain.AuditEntry{
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		OldValues: oldValues,
		NewValues: newValues,
		RequestID: telemetry.RequestID(ctx),
		CreatedAt: now,
	}
}
