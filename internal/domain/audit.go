package domain

import "time"

// Audit actions
const (
	AuditDeliverableGenerated = "deliverable.generated"
	AuditDeliverableApproved  = "deliverable.approved"
)

// AuditEntry is an append-only record of a state change.
type AuditEntry struct {
	ID        int64
	Action    string
	TableName string
	RecordID  int64
	OldValues map[string]any
	NewValues map[string]any
	RequestID string
	CreatedAt time.Time
}
