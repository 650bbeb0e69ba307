package repository

import (
	"context"
	"encoding/json"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository appends to the audit log. Rows are never updated.
type AuditRepository struct {
	db dbtx
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: pool}
}

func NewAuditRepositoryWithTx(tx pgx.Tx) *AuditRepository {
	return &AuditRepository{db: tx}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	oldJSON, err := marshalValues(entry.OldValues)
	if err != nil {
		return err
	}
	newJSON, err := marshalValues(entry.NewValues)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO audit_log (action, table_name, record_id, old_values, new_values, request_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		entry.Action,
		entry.TableName,
		entry.RecordID,
		oldJSON,
		newJSON,
		nullableString(entry.RequestID),
		entry.CreatedAt,
	).Scan(&entry.ID)
}

func (r *AuditRepository) ListByRecord(ctx context.Context, tableName string, recordID int64) ([]*domain.AuditEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, action, table_name, record_id, old_values, new_values, request_id, created_at
		 FROM audit_log
		 WHERE table_name = $1 AND record_id = $2
		 ORDER BY created_at, id`,
		tableName, recordID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var oldJSON, newJSON []byte
		var requestID *string
		if err := rows.Scan(&e.ID, &e.Action, &e.TableName, &e.RecordID, &oldJSON, &newJSON, &requestID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(oldJSON) > 0 {
			if err := json.Unmarshal(oldJSON, &e.OldValues); err != nil {
				return nil, err
			}
		}
		if len(newJSON) > 0 {
			if err := json.Unmarshal(newJSON, &e.NewValues); err != nil {
				return nil, err
			}
		}
		e.RequestID = stringOrEmpty(requestID)
		results = append(results, &e)
	}
	return results, rows.Err()
}

// marshalValues returns nil for an empty map so the column stays NULL.
func marshalValues(values map[string]any) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return json.Marshal(values)
}
