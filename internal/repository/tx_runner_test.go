//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/cloo-solutions/draftwise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRunner_CommitsAllRepositories(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	runner := NewTxRunner(pool)

	clientID := testutil.InsertClient(ctx, t, pool, "Acme")
	now := time.Now().UTC()
	d := newDeliverable(clientID, now)
	entry := newEntry(clientID, "Approved assessment", now)

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Deliverables().Create(ctx, d); err != nil {
			return err
		}
		if err := repos.Knowledge().Create(ctx, entry); err != nil {
			return err
		}
		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:    domain.AuditDeliverableApproved,
			TableName: "deliverables",
			RecordID:  d.ID,
			OldValues: map[string]any{"status": "draft"},
			NewValues: map[string]any{"status": "approved", "knowledge_entry_id": entry.ID},
			RequestID: "req-123",
			CreatedAt: now,
		})
	})
	require.NoError(t, err)

	_, err = NewDeliverableRepository(pool).GetByID(ctx, d.ID)
	require.NoError(t, err)
	_, err = NewKnowledgeRepository(pool).GetByID(ctx, entry.ID)
	require.NoError(t, err)

	audit, err := NewAuditRepository(pool).ListByRecord(ctx, "deliverables", d.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, domain.AuditDeliverableApproved, audit[0].Action)
	assert.Equal(t, "req-123", audit[0].RequestID)
	assert.Equal(t, "draft", audit[0].OldValues["status"])
	// JSON numbers decode as float64.
	assert.Equal(t, float64(entry.ID), audit[0].NewValues["knowledge_entry_id"])
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	runner := NewTxRunner(pool)

	clientID := testutil.InsertClient(ctx, t, pool, "Acme")
	d := newDeliverable(clientID, time.Now().UTC())
	boom := errors.New("boom")

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Deliverables().Create(ctx, d); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewDeliverableRepository(pool).GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrDeliverableNotFound)
}

func TestAuditRepository_EmptyValuesStayNull(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewAuditRepository(pool)

	entry := &domain.AuditEntry{
		Action:    domain.AuditDeliverableGenerated,
		TableName: "deliverables",
		RecordID:  7,
		NewValues: map[string]any{"status": "draft"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, entry))
	assert.NotZero(t, entry.ID)

	var oldIsNull bool
	require.NoError(t, pool.QueryRow(ctx, `SELECT old_values IS NULL FROM audit_log WHERE id = $1`, entry.ID).Scan(&oldIsNull))
	assert.True(t, oldIsNull)

	list, err := repo.ListByRecord(ctx, "deliverables", 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].OldValues)
	assert.Empty(t, list[0].RequestID)
}
